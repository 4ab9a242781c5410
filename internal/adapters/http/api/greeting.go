// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// GreetingDependencies defines the interface for the greeting route.
type GreetingDependencies interface {
	Greet(ctx context.Context) string
}

// GreetingHandler handles greeting requests.
type GreetingHandler struct {
	deps GreetingDependencies
}

// NewGreetingHandler creates a new greeting handler.
func NewGreetingHandler(deps GreetingDependencies) *GreetingHandler {
	return &GreetingHandler{deps: deps}
}

// HandleGreet handles GET / requests.
func (h *GreetingHandler) HandleGreet(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, h.deps.Greet(r.Context()))
}

// FailureHandler handles the forced error route.
type FailureHandler struct{}

// NewFailureHandler creates a new failure handler.
func NewFailureHandler() *FailureHandler {
	return &FailureHandler{}
}

// HandleFailure handles GET /-1/error requests with an empty 500.
func (h *FailureHandler) HandleFailure(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusInternalServerError)
}
