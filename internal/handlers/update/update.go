// Package update implements the handler for Strava webhook events.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/strava"
	"github.com/sirupsen/logrus"
)

type AthleteLookup interface {
	UserIDForAthlete(ctx context.Context, stravaID int64) (string, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type Handler struct {
	Athletes AthleteLookup
	Cache    Invalidator
	Log      logrus.FieldLogger
}

// ServeHTTP drops cached activity of the athlete an event is about, so the
// next leaderboard request sees the new or changed activity. Strava retries
// anything but a 200, so unknown athletes and cache failures are only logged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var webhook strava.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&webhook); err != nil {
		h.Log.WithError(err).Error("unable to unmarshal webhook payload")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	log := h.Log.WithFields(logrus.Fields{
		"owner_id":    webhook.OwnerID,
		"object_type": webhook.ObjectType,
		"aspect_type": webhook.AspectType,
	})

	if webhook.ObjectType != "activity" {
		if webhook.Updates.Authorized == "false" {
			log.Info("athlete revoked access")
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.Cache == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, err := h.Athletes.UserIDForAthlete(r.Context(), webhook.OwnerID)
	var nf *competition.NotFoundError
	if errors.As(err, &nf) {
		log.Info("ignoring event for unknown athlete")
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		log.WithError(err).Error("unable to look up athlete")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.Cache.Invalidate(r.Context(), userID); err != nil {
		log.WithError(err).Warn("unable to invalidate cached activity")
	}
	log.WithField("user_id", userID).Info("activity changed")
	w.WriteHeader(http.StatusOK)
}
