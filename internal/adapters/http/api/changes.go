package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mergington/activities/internal/domain/model"
)

const defaultChangeLimit = 20

// ChangeFeed exposes the recent roster change journal.
type ChangeFeed interface {
	RecentChanges(ctx context.Context, limit int) []model.RosterChange
}

type changeResponse struct {
	ID       string `json:"id"`
	Seq      uint64 `json:"seq"`
	Kind     string `json:"kind"`
	Activity string `json:"activity"`
	Email    string `json:"email"`
	At       string `json:"at"`
}

// ChangesHandler handles roster change feed requests.
type ChangesHandler struct {
	deps     ChangeFeed
	maxLimit int
}

// NewChangesHandler creates a new change feed handler.
func NewChangesHandler(deps ChangeFeed, maxLimit int) *ChangesHandler {
	if maxLimit < 1 {
		maxLimit = defaultMaxChangeLimit
	}
	return &ChangesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetChanges handles GET /activities/changes?limit=N requests.
func (h *ChangesHandler) HandleGetChanges(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_changes"

	n := min(defaultChangeLimit, h.maxLimit)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		if parsed > h.maxLimit {
			writeError(w, WrapKind(op, ErrLimitExceeded, fmt.Errorf("limit must not exceed %d", h.maxLimit)))
			return
		}
		n = parsed
	}

	changes := h.deps.RecentChanges(r.Context(), n)
	out := make([]changeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, changeResponse{
			ID:       c.ID,
			Seq:      c.Seq,
			Kind:     string(c.Kind),
			Activity: c.Activity,
			Email:    c.Email,
			At:       c.At.UTC().Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
