// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/sleigh/internal/domain/reindeer"
	"github.com/okian/sleigh/pkg/logger"
)

// HerdDependencies defines the interface for reindeer herd operations.
type HerdDependencies interface {
	CombinedStrength(ctx context.Context, herd []reindeer.Reindeer) uint32
	Contest(ctx context.Context, herd []reindeer.Reindeer) (reindeer.Standings, error)
}

// HerdHandler handles the reindeer JSON routes.
type HerdHandler struct {
	deps         HerdDependencies
	maxBodyBytes int64
}

// NewHerdHandler creates a new herd handler.
func NewHerdHandler(deps HerdDependencies, maxBodyBytes int64) *HerdHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &HerdHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleStrength handles POST /4/strength requests.
func (h *HerdHandler) HandleStrength(w http.ResponseWriter, r *http.Request) {
	const op = "api.strength"
	herd, err := h.decode(w, r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	total := h.deps.CombinedStrength(r.Context(), herd)
	writeText(w, http.StatusOK, strconv.FormatUint(uint64(total), 10))
}

// HandleContest handles POST /4/contest requests.
func (h *HerdHandler) HandleContest(w http.ResponseWriter, r *http.Request) {
	const op = "api.contest"
	herd, err := h.decode(w, r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	standings, err := h.deps.Contest(r.Context(), herd)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// decode enforces the JSON content type and body limit, then parses the herd.
func (h *HerdHandler) decode(w http.ResponseWriter, r *http.Request) ([]reindeer.Reindeer, error) {
	if !isJSON(r.Header.Get("Content-Type")) {
		return nil, NewKind("api.decode", ErrUnsupportedMedia)
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind("api.decode", ErrBodyTooLarge, err)
		}
		return nil, WrapKind("api.decode", ErrBadRequest, err)
	}
	return reindeer.DecodeHerd(data)
}

func (h *HerdHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	ctx := r.Context()
	logger.FromContext(ctx).Debug(ctx, "herd request rejected",
		logger.Int("status", status),
		logger.String("code", code),
		logger.Error(err))
	writeError(w, status, code, err)
}

// isJSON accepts application/json and any application/*+json media type.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
