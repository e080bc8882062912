package api

import (
	"context"
	"net/http"

	"github.com/mergington/activities/pkg/logger"
)

// RosterEditor mutates activity rosters.
type RosterEditor interface {
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// RosterHandler handles signup and unregister requests.
type RosterHandler struct {
	deps   RosterEditor
	logger logger.Logger
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterEditor, l logger.Logger) *RosterHandler {
	return &RosterHandler{deps: deps, logger: l}
}

// HandleSignup handles POST /activities/{name}/signup?email=... requests.
func (h *RosterHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.signup", h.deps.Signup)
}

// HandleUnregister handles POST /activities/{name}/unregister?email=... requests.
func (h *RosterHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.unregister", h.deps.Unregister)
}

func (h *RosterHandler) handle(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	mutate func(ctx context.Context, activity, email string) (string, error),
) {
	// FormValue reads the query string and, for form posts, the body.
	msg, err := mutate(r.Context(), activityName(r), r.FormValue("email"))
	if err != nil {
		err = Wrap(op, err)
		if problemFor(err).status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "roster change failed", logger.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
