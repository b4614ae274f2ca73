// Package strava reads athlete activity from the Strava API and manages the
// webhook subscription that tells us when it changes.
package strava

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/lildude/competitions/internal/client"
	"golang.org/x/oauth2"
)

var BaseURL = "https://www.strava.com"

// OauthConfig returns the OAuth2 configuration for the Strava app.
func OauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.strava.com/oauth/authorize",
			TokenURL: "https://www.strava.com/oauth/token",
		},
		RedirectURL: redirectURL,
		Scopes:      []string{"activity:read_all"},
	}
}

// Activity struct holds only the data we want from the Strava API for an activity.
type Activity struct {
	Distance       float64   `json:"distance"`
	ElapsedTime    int64     `json:"elapsed_time"`
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	Type           string    `json:"type"`
}

type WebhookPayload struct {
	AspectType     string  `json:"aspect_type"`
	EventTime      int64   `json:"event_time"`
	ObjectID       int64   `json:"object_id"`
	ObjectType     string  `json:"object_type"`
	OwnerID        int64   `json:"owner_id"`
	SubscriptionID int64   `json:"subscription_id"`
	Updates        updates `json:"updates"`
}

type updates struct {
	Authorized string `json:"authorized,omitempty"`
	Private    string `json:"private,omitempty"`
	Title      string `json:"title,omitempty"`
	Type       string `json:"type,omitempty"`
}

const perPage = 200

// ListActivities returns one page of the authenticated athlete's activities
// that started after after and, when before is non-zero, before before.
func ListActivities(ctx context.Context, c *client.Client, after, before time.Time, page int) ([]Activity, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatInt(after.Unix(), 10))
	if !before.IsZero() {
		q.Set("before", strconv.FormatInt(before.Unix(), 10))
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var activities []Activity
	if err := c.Get(ctx, "/api/v3/athlete/activities", q, &activities); err != nil {
		return nil, fmt.Errorf("listing activities page %d: %w", page, err)
	}

	return activities, nil
}
