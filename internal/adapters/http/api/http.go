// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/sleigh/internal/domain/reindeer"
	"github.com/okian/sleigh/pkg/logger"
	"golang.org/x/time/rate"
)

// Default request limits.
const (
	defaultMaxBodyBytes = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GreetingDependencies
	SledDependencies
	HerdDependencies
}

// Server wires HTTP routes for the challenge API.
type Server struct {
	greetingHandler *GreetingHandler
	failureHandler  *FailureHandler
	sledHandler     *SledHandler
	herdHandler     *HerdHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler

	// sledRoute is the middleware-wrapped sled handler, shared by the mux
	// route and Handler.
	sledRoute http.HandlerFunc

	maxBodyBytes int64
	limiter      *rate.Limiter
	logger       logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRateLimit enables token bucket limiting on the challenge routes.
// A non-positive limit leaves limiting disabled.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *Server) {
		if limit > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
		}
	}
}

// WithLogger sets the base logger used for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.greetingHandler = NewGreetingHandler(deps)
	s.failureHandler = NewFailureHandler()
	s.sledHandler = NewSledHandler(deps)
	s.herdHandler = NewHerdHandler(deps, s.maxBodyBytes)
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.sledRoute = s.withMiddleware(s.sledHandler.HandleRecalibrate, "sled")
	return s
}

// sledPrefix is the path prefix of the sled route.
const sledPrefix = "/1/"

// Handler returns next with sled requests dispatched on the raw request path.
// ServeMux redirects paths holding empty or dot segments to their cleaned
// form; sled paths must reach the handler as sent, blanks included.
func (s *Server) Handler(next http.Handler) http.Handler {
	if next == nil {
		panic("handler is nil")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && strings.HasPrefix(r.URL.Path, sledPrefix) {
			r.SetPathValue("sled", strings.TrimPrefix(r.URL.Path, sledPrefix))
			s.sledRoute(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Challenge routes
	mux.HandleFunc("GET /{$}", s.withMiddleware(s.greetingHandler.HandleGreet, "greet"))
	mux.HandleFunc("GET /-1/error", s.withMiddleware(s.failureHandler.HandleFailure, "failure"))
	mux.HandleFunc("GET /1/{sled...}", s.sledRoute)
	mux.HandleFunc("POST /4/strength", s.withMiddleware(s.herdHandler.HandleStrength, "strength"))
	mux.HandleFunc("POST /4/contest", s.withMiddleware(s.herdHandler.HandleContest, "contest"))

	// Operational routes are not rate limited
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps domain and API errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, reindeer.ErrMalformed), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, reindeer.ErrEmptyHerd):
		return http.StatusUnprocessableEntity, "empty_herd"
	case errors.Is(err, reindeer.ErrInvalidHerd), errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity, "unprocessable_entity"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
