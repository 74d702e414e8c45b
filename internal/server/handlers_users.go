package server

import (
	"net/http"

	"github.com/swzro/builders/internal/db"
	"github.com/swzro/builders/internal/server/middleware"
	"github.com/swzro/builders/internal/types"
)

// handleGetUser returns a public profile together with the user's public builds.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	user, err := s.repo.GetUserByUsername(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, &NotFoundError{Resource: "user", ID: username})
		return
	}

	builds, err := s.repo.ListBuildsByUser(r.Context(), user.ID, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if builds == nil {
		builds = []db.Build{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"profile": user.PublicProfile(),
		"builds":  builds,
	})
}

// handleUpdateProfile creates or updates the caller's profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.UpdateProfileRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.repo.UpdateProfile(r.Context(), userID, middleware.GetEmail(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}
