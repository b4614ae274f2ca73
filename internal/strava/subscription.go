package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Subscription holds what is needed to register our webhook with Strava.
type Subscription struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	VerifyToken  string
}

type pushSubscription struct {
	ID          int64  `json:"id"`
	CallbackURL string `json:"callback_url"`
}

// Existing reports whether Strava already delivers events to our callback.
func (s Subscription) Existing(ctx context.Context) (bool, error) {
	q := url.Values{"client_id": {s.ClientID}, "client_secret": {s.ClientSecret}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BaseURL+"/api/v3/push_subscriptions?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("creating push_subscriptions request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("GET strava /push_subscriptions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("reading push_subscriptions body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("GET strava /push_subscriptions: %s", resp.Status)
	}

	var subs []pushSubscription
	if err := json.Unmarshal(body, &subs); err != nil {
		return false, fmt.Errorf("unmarshaling push_subscriptions body: %w", err)
	}
	for _, sub := range subs {
		if sub.CallbackURL == s.CallbackURL {
			return true, nil
		}
	}
	return false, nil
}

// Subscribe registers the callback unless it is already registered. It
// reports whether a new subscription was created.
func (s Subscription) Subscribe(ctx context.Context) (bool, error) {
	exists, err := s.Existing(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	form := url.Values{
		"client_id":     {s.ClientID},
		"client_secret": {s.ClientSecret},
		"callback_url":  {s.CallbackURL},
		"verify_token":  {s.VerifyToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, BaseURL+"/api/v3/push_subscriptions", strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("creating subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("POST strava /push_subscriptions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("POST strava /push_subscriptions: %s: %s", resp.Status, body)
	}
	return true, nil
}
