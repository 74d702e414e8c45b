package server

import (
	"net/http"

	"github.com/swzro/builders/internal/db"
	"github.com/swzro/builders/internal/pipeline"
	"github.com/swzro/builders/internal/server/middleware"
	"github.com/swzro/builders/internal/types"
)

var validate = types.NewValidator()

func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*types.AnalyzeRequest, error) {
	var req types.AnalyzeRequest
	if err := readJSON(w, r, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// handleAnalyze runs the pipeline and returns the outcome.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyzeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.analyzer.Run(r.Context(), pipeline.Input{Links: req.Links, Files: req.Files})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

// handleAnalyzeStream runs the pipeline and streams progress events followed by
// a result event. Request errors are reported before the stream opens.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyzeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in := pipeline.Input{Links: req.Links, Files: req.Files}
	if err := pipeline.Validate(in); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	in.OnProgress = func(ev pipeline.ProgressEvent) {
		_ = sse.WriteEvent(eventProgress, ev)
	}
	outcome, err := s.analyzer.Run(r.Context(), in)
	if err != nil {
		sse.WriteError(publicMessage(err, HTTPStatus(err)))
		return
	}
	_ = sse.WriteEvent(eventResult, outcome)
}

// handleCombine merges two drafts.
func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	var req types.CombineRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.analyzer.CombineDrafts(r.Context(), req.A, req.B)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	builds, err := s.repo.ListBuildsByUser(r.Context(), userID, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if builds == nil {
		builds = []db.Build{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"builds": builds})
}

func (s *Server) decodeBuildInput(w http.ResponseWriter, r *http.Request) (*types.BuildInput, error) {
	var in types.BuildInput
	if err := readJSON(w, r, &in); err != nil {
		return nil, err
	}
	in.Tags = types.NormalizeTags(in.Tags)
	if in.SourceURLs == nil {
		in.SourceURLs = []string{}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Server) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.decodeBuildInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	build, err := s.repo.CreateBuild(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, build)
}

// handleGetBuild returns a public build to anyone and a private build to its owner.
// Private builds of other users are reported as missing.
func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	build, err := s.repo.GetBuild(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if build == nil {
		s.writeError(w, r, &NotFoundError{Resource: "build", ID: id.String()})
		return
	}
	if !build.IsPublic {
		if caller, err := middleware.GetUserID(r); err != nil || caller != build.UserID {
			s.writeError(w, r, &NotFoundError{Resource: "build", ID: id.String()})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, build)
}

func (s *Server) handleUpdateBuild(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.decodeBuildInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	build, err := s.repo.UpdateBuild(r.Context(), userID, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, build)
}

func (s *Server) handleDeleteBuild(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteBuild(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
