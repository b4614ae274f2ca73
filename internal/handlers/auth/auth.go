// Package auth implements the authentication handler.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type AthleteStore interface {
	SaveAthlete(ctx context.Context, userID string, stravaID int64, name string, token *oauth2.Token) error
}

type SessionStore interface {
	UserID(r *http.Request) (string, error)
	SignIn(w http.ResponseWriter, r *http.Request, userID string) error
}

type Handler struct {
	Config     *oauth2.Config
	StateToken string
	Athletes   AthleteStore
	Sessions   SessionStore
	Log        logrus.FieldLogger
	// Landing is where signed in users are sent.
	Landing string
}

// ServeHTTP signs the user in with Strava. Without a state the user is sent
// to Strava to authorize us; Strava then redirects back with a code which is
// exchanged for a token.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Log.WithError(err).Error("unable to parse form")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	state := r.Form.Get("state")
	if state == "" {
		if userID, _ := h.Sessions.UserID(r); userID != "" {
			http.Redirect(w, r, h.Landing, http.StatusFound)
			return
		}
		u := h.Config.AuthCodeURL(h.StateToken)
		h.Log.WithField("url", u).Info("redirecting to strava auth")
		http.Redirect(w, r, u, http.StatusFound)
		return
	}

	if state != h.StateToken {
		http.Error(w, "state invalid", http.StatusBadRequest)
		return
	}
	code := r.Form.Get("code")
	if code == "" {
		http.Error(w, "code not found", http.StatusBadRequest)
		return
	}
	token, err := h.Config.Exchange(r.Context(), code)
	if err != nil {
		h.Log.WithError(err).Error("token exchange failed")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	athlete, ok := token.Extra("athlete").(map[string]any)
	if !ok {
		h.Log.Error("unable to get athlete info")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	id, ok := athlete["id"].(float64)
	if !ok || id <= 0 {
		h.Log.WithField("athlete", athlete).Error("athlete has no id")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	stravaID := int64(id)
	userID := strconv.FormatInt(stravaID, 10)
	if err := h.Athletes.SaveAthlete(r.Context(), userID, stravaID, displayName(athlete), token); err != nil {
		h.Log.WithError(err).Error("unable to store athlete")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.Sessions.SignIn(w, r, userID); err != nil {
		h.Log.WithError(err).Error("unable to save session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.Log.WithField("user_id", userID).Info("successfully authenticated")

	http.Redirect(w, r, h.Landing, http.StatusFound)
}

func displayName(athlete map[string]any) string {
	first, _ := athlete["firstname"].(string)
	last, _ := athlete["lastname"].(string)
	if name := strings.TrimSpace(fmt.Sprintf("%s %s", first, last)); name != "" {
		return name
	}
	username, _ := athlete["username"].(string)
	return username
}
