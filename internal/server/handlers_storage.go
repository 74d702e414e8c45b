package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/swzro/builders/internal/storage"
	"github.com/swzro/builders/internal/types"
)

// handleUploadURL issues a signed upload URL for one object.
func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	var req types.UploadURLRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	signed, err := s.signer.SignedUploadURL(s.publicBaseURL, req.Bucket, req.Path, req.FileName, req.ContentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.UploadURLResponse{
		UploadURL: signed.UploadURL,
		PublicURL: signed.PublicURL,
		Key:       signed.Key,
		Token:     signed.Token,
	})
}

func uploadToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return r.Header.Get("X-Upload-Token")
}

// handleUploadObject stores the request body under a key the token was issued for.
// The request content type must match the one the token was issued with.
func (s *Server) handleUploadObject(w http.ResponseWriter, r *http.Request) {
	key, err := storage.CleanKey(r.PathValue("key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	claims, err := s.signer.Verify(uploadToken(r), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != claims.ContentType {
		s.writeError(w, r, &ValidationError{Field: "Content-Type", Message: "must be " + claims.ContentType})
		return
	}

	if err := s.store.Put(r.Context(), key, r.Body, mediaType); err != nil {
		s.writeError(w, r, err)
		return
	}
	log.Info().Str("key", key).Msg("object stored")
	s.jsonResponse(w, http.StatusCreated, map[string]string{
		"key":        key,
		"public_url": storage.ObjectURL(s.publicBaseURL, key),
	})
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	obj, err := s.store.Open(r.Context(), r.PathValue("key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj); err != nil {
		log.Warn().Err(err).Str("key", r.PathValue("key")).Msg("failed to stream object")
	}
}
