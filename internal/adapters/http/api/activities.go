package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/logger"
)

// ActivityLister reads the activity registry.
type ActivityLister interface {
	ListActivities(ctx context.Context) ([]model.Activity, error)
}

type activityResponse struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// activityCatalog encodes as a JSON object keyed by activity name, keeping
// registry order rather than the sorted order of a Go map.
type activityCatalog []model.Activity

func (c activityCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		value, err := json.Marshal(activityResponse{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ActivitiesHandler handles activity listing requests.
type ActivitiesHandler struct {
	deps   ActivityLister
	logger logger.Logger
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps ActivityLister, l logger.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps, logger: l}
}

// HandleList handles GET /activities requests.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_activities"
	activities, err := h.deps.ListActivities(r.Context())
	if err != nil {
		err = Wrap(op, err)
		h.logger.Error(r.Context(), "listing activities failed", logger.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activityCatalog(activities))
}
