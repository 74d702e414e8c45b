package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swzro/builders/internal/config"
	"github.com/swzro/builders/internal/db"
	"github.com/swzro/builders/internal/fetch"
	"github.com/swzro/builders/internal/ingestion"
	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/pipeline"
	"github.com/swzro/builders/internal/server/middleware"
	"github.com/swzro/builders/internal/storage"
	"github.com/swzro/builders/internal/types"
)

// maxBodyBytes bounds JSON request bodies; analyze requests carry file contents.
const maxBodyBytes = 10 << 20

// Repository is the persistence the handlers need.
type Repository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, email string, req *types.UpdateProfileRequest) (*db.User, error)
	CreateBuild(ctx context.Context, userID uuid.UUID, in *types.BuildInput) (*db.Build, error)
	GetBuild(ctx context.Context, id uuid.UUID) (*db.Build, error)
	ListBuildsByUser(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]db.Build, error)
	UpdateBuild(ctx context.Context, userID, id uuid.UUID, in *types.BuildInput) (*db.Build, error)
	DeleteBuild(ctx context.Context, userID, id uuid.UUID) error
}

// Analyzer runs the draft pipeline.
type Analyzer interface {
	Run(ctx context.Context, in pipeline.Input) (*types.PipelineOutcome, error)
	CombineDrafts(ctx context.Context, a, b *types.DraftRecord) (*types.PipelineOutcome, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Repo          Repository
	Analyzer      Analyzer
	Store         storage.Store
	Signer        *storage.Signer
	JWT           *JWTService
	Model         string
	PublicBaseURL string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	repo          Repository
	analyzer      Analyzer
	store         storage.Store
	signer        *storage.Signer
	jwtService    *JWTService
	model         string
	publicBaseURL string

	closers []func()
}

// New connects every dependency described by cfg and returns a ready server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.JWT.Validate(); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey())
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	store, err := storage.NewLocalStore(cfg.StorageDir)
	if err != nil {
		_ = client.Close()
		database.Close()
		return nil, err
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.FetchTimeout
	var renderer fetch.Renderer
	if cfg.FetchUseBrowser {
		renderer = fetch.NewBrowserRenderer(cfg.FetchTimeout)
	}

	s := NewWithDeps(cfg.Port, Deps{
		Repo:          database,
		Analyzer:      pipeline.New(client, ingestion.NewLinkExtractor(fetchOpts, renderer)),
		Store:         store,
		Signer:        storage.NewSigner(cfg.JWT.Secret, 0),
		JWT:           NewJWTService(cfg.JWT),
		Model:         client.GetModel(llm.TierStandard),
		PublicBaseURL: cfg.PublicBaseURL,
	})
	s.closers = append(s.closers, func() { _ = client.Close() }, database.Close)
	return s, nil
}

// NewWithDeps builds a server from already constructed collaborators.
func NewWithDeps(port int, deps Deps) *Server {
	s := &Server{
		repo:          deps.Repo,
		analyzer:      deps.Analyzer,
		store:         deps.Store,
		signer:        deps.Signer,
		jwtService:    deps.JWT,
		model:         deps.Model,
		publicBaseURL: deps.PublicBaseURL,
	}

	s.handler = s.withLogging(s.withCORS(s.routes()))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // analysis may take minutes
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	tokens := s.jwtService.AsTokenValidator()
	auth := middleware.AuthMiddleware(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /builds/analyze", auth(http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("POST /builds/analyze/stream", auth(http.HandlerFunc(s.handleAnalyzeStream)))
	mux.Handle("POST /builds/combine", auth(http.HandlerFunc(s.handleCombine)))

	mux.Handle("GET /builds", auth(http.HandlerFunc(s.handleListBuilds)))
	mux.Handle("POST /builds", auth(http.HandlerFunc(s.handleCreateBuild)))
	mux.Handle("GET /builds/{id}", optionalAuth(http.HandlerFunc(s.handleGetBuild)))
	mux.Handle("PUT /builds/{id}", auth(http.HandlerFunc(s.handleUpdateBuild)))
	mux.Handle("DELETE /builds/{id}", auth(http.HandlerFunc(s.handleDeleteBuild)))

	mux.HandleFunc("GET /users/{username}", s.handleGetUser)
	mux.Handle("PUT /users/me/profile", auth(http.HandlerFunc(s.handleUpdateProfile)))

	mux.Handle("POST /storage/upload-url", auth(http.HandlerFunc(s.handleUploadURL)))
	mux.HandleFunc("PUT /storage/objects/{key...}", s.handleUploadObject)
	mux.HandleFunc("GET /storage/objects/{key...}", s.handleGetObject)
	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Str("model", s.model).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.close()
	log.Info().Msg("server stopped")
	return nil
}

func (s *Server) close() {
	for _, c := range s.closers {
		c()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Upload-Token")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status. It forwards Flush so SSE keeps working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "model": s.model})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code and writes it. Server errors are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	s.errorResponse(w, status, publicMessage(err, status))
}

// readJSON decodes the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// callerID returns the authenticated user. Routes behind AuthMiddleware always have one.
func callerID(r *http.Request) (uuid.UUID, error) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		return uuid.Nil, &UnauthorizedError{Message: "authentication required"}
	}
	return id, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ValidationError{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}
