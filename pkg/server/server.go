package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ekiroute/pkg/ekispert"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RoutePath is where the course search proxy is mounted.
const RoutePath = "/api/ekispert/route"

// Error messages returned by the proxy endpoint.
const (
	msgMissingKey    = "apiKey is required"
	msgMissingCoords = "origin/destination coordinates are required"
	msgNonJSON       = "Non-JSON response from Ekispert"
	msgBadBody       = "request body must be a JSON object"
)

// Server exposes the course search as a JSON endpoint so browser clients can
// reach the provider without CORS trouble.
type Server struct {
	logger        *zap.Logger
	clientOptions []ekispert.ClientOption
	origins       []string
}

// Option configures a Server
type Option func(*Server)

// WithClientOptions is applied to every provider client the server builds.
func WithClientOptions(opts ...ekispert.ClientOption) Option {
	return func(s *Server) {
		s.clientOptions = append(s.clientOptions, opts...)
	}
}

// WithAllowedOrigins restricts CORS to the given origins. The default allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// New creates a server that logs to logger.
func New(logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger, origins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post(RoutePath, s.handleRoute)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("proxy listening", zap.String("addr", addr), zap.String("route", RoutePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleRoute handles POST /api/ekispert/route
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req ekispert.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ekispert.RouteReply{Error: msgBadBody})
		return
	}

	if strings.TrimSpace(req.APIKey) == "" {
		writeJSON(w, http.StatusBadRequest, ekispert.RouteReply{Error: msgMissingKey})
		return
	}
	if !req.HasCoordinates() {
		writeJSON(w, http.StatusBadRequest, ekispert.RouteReply{Error: msgMissingCoords})
		return
	}

	client, err := ekispert.NewClient(req.APIKey, s.clientOptions...)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ekispert.RouteReply{Error: msgMissingKey})
		return
	}

	result, err := client.SearchCourse(r.Context(), req.Origin(), req.Destination())
	if err != nil {
		status, reply := errorReply(err)
		s.logger.Warn("provider query failed",
			zap.Int("status", status),
			zap.String("reason", reply.Error),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeJSON(w, status, reply)
		return
	}

	writeJSON(w, http.StatusOK, ekispert.RouteReply{RequestURL: result.RequestURL, Data: result.Body})
}

// errorReply maps a failed search to a status code and reply body.
func errorReply(err error) (int, ekispert.RouteReply) {
	var qe *ekispert.QueryError
	if !errors.As(err, &qe) {
		return http.StatusInternalServerError, ekispert.RouteReply{Error: err.Error()}
	}

	switch {
	case errors.Is(err, ekispert.ErrNonJSON):
		return http.StatusBadGateway, ekispert.RouteReply{Error: msgNonJSON, RequestURL: qe.RequestURL, Raw: qe.Raw}
	case qe.Status != 0 && (qe.Status < 200 || qe.Status > 299):
		return qe.Status, ekispert.RouteReply{Error: qe.Reason, RequestURL: qe.RequestURL, Raw: qe.Raw}
	default:
		return http.StatusInternalServerError, ekispert.RouteReply{Error: qe.Reason}
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
