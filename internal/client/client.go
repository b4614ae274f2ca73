// Package client reads JSON resources from an activity API such as Strava's.
// Authentication is left to the http.Client it is given, usually one built
// by golang.org/x/oauth2.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const userAgent = "Competitions/0.1"

// ErrorResponse is returned when the API answers with a non-2xx status.
// Message holds the API's own explanation when the body carries one.
type ErrorResponse struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *ErrorResponse) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RateLimited reports whether the API refused the request for exceeding its
// request quota.
func (e *ErrorResponse) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client issues requests against BaseURL.
type Client struct {
	BaseURL   *url.URL
	UserAgent string

	http *http.Client
}

// NewClient returns a Client for baseURL. A nil hc means http.DefaultClient.
func NewClient(baseURL *url.URL, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, UserAgent: userAgent, http: hc}
}

// Get fetches path with the query q and decodes the JSON body into v. An
// empty body leaves v untouched.
func (c *Client) Get(ctx context.Context, path string, q url.Values, v any) error {
	u, err := c.BaseURL.Parse(path)
	if err != nil {
		return fmt.Errorf("parsing path %q: %w", path, err)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", u.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		er := &ErrorResponse{StatusCode: resp.StatusCode, Body: string(data)}
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil {
			er.Message = apiErr.Message
		}
		return er
	}

	if v == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", u.Path, err)
	}
	return nil
}
