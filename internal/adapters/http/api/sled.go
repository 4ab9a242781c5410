// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/sleigh/pkg/logger"
)

// SledDependencies defines the interface for sled recalibration.
type SledDependencies interface {
	Recalibrate(ctx context.Context, path string) uint32
}

// SledHandler handles cube-the-bits requests.
type SledHandler struct {
	deps SledDependencies
}

// NewSledHandler creates a new sled handler.
func NewSledHandler(deps SledDependencies) *SledHandler {
	return &SledHandler{deps: deps}
}

// HandleRecalibrate handles GET /1/{sled...} requests.
func (h *SledHandler) HandleRecalibrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.PathValue("sled")
	logger.FromContext(ctx).Debug(ctx, "recalibrating sled", logger.String("sled", path))

	result := h.deps.Recalibrate(ctx, path)
	writeText(w, http.StatusOK, strconv.FormatUint(uint64(result), 10))
}
