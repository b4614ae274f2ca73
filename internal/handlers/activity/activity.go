// Package activity implements the daily activity upload handler used by the
// mobile client.
package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/handlers/respond"
	"github.com/lildude/competitions/internal/middleware"
	"github.com/sirupsen/logrus"
)

type Recorder interface {
	RecordDailyActivity(ctx context.Context, sample competition.DailySample) error
}

// Invalidator drops cached activity of a user.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type Handler struct {
	Recorder Recorder
	Cache    Invalidator
	Log      logrus.FieldLogger
}

type uploadRequest struct {
	ActivityType string   `json:"activity_type"`
	Distance     *float64 `json:"distance"`
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/activity/{date}", h.upload).Methods(http.MethodPut)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respond.BadRequest(w, h.Log, "date must be YYYY-MM-DD")
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.Log, "invalid request body")
		return
	}
	if req.ActivityType == "" || req.Distance == nil || *req.Distance < 0 {
		respond.BadRequest(w, h.Log, "activity_type and a non-negative distance are required")
		return
	}

	sample := competition.DailySample{
		UserID:       middleware.UserID(r.Context()),
		Date:         date,
		ActivityType: req.ActivityType,
		Distance:     *req.Distance,
	}
	if err := h.Recorder.RecordDailyActivity(r.Context(), sample); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Invalidate(r.Context(), sample.UserID); err != nil {
			h.Log.WithError(err).WithField("user_id", sample.UserID).Warn("unable to invalidate cached activity")
		}
	}

	h.Log.WithFields(logrus.Fields{"user_id": sample.UserID, "date": date, "activity_type": sample.ActivityType}).Debug("daily activity recorded")
	respond.JSON(w, h.Log, http.StatusOK, sample)
}
