// Package calendarevent implements methods to get events from ical feeds.
package calendarevent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apognu/gocal"
)

// ErrNoEvent is returned when a feed has no event in the searched window.
var ErrNoEvent = errors.New("no upcoming calendar event")

type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type CalendarService struct {
	Client HTTPClient
	// Horizon is how far ahead of the search time events are considered.
	Horizon time.Duration
}

func NewCalendarService(client HTTPClient) *CalendarService {
	if client == nil {
		client = http.DefaultClient
	}
	return &CalendarService{Client: client, Horizon: 365 * 24 * time.Hour}
}

// NextEvent returns the earliest event in the feed at feedURL that has not
// ended by from. Events whose summary contains match are preferred when
// match is non-empty.
func (cs CalendarService) NextEvent(ctx context.Context, feedURL string, from time.Time, match string) (*Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := cs.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching calendar: %s", http.StatusText(resp.StatusCode))
	}

	until := from.Add(cs.Horizon)
	c := gocal.NewParser(resp.Body)
	c.Start, c.End = &from, &until

	if err := c.Parse(); err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var best, bestMatch *Event
	for _, component := range c.Events {
		if component.Start == nil || component.End == nil || !component.End.After(from) {
			continue
		}
		e := &Event{
			Summary:     component.Summary,
			Description: component.Description,
			Start:       *component.Start,
			End:         *component.End,
		}
		if best == nil || e.Start.Before(best.Start) {
			best = e
		}
		if match != "" && strings.Contains(strings.ToLower(e.Summary), strings.ToLower(match)) {
			if bestMatch == nil || e.Start.Before(bestMatch.Start) {
				bestMatch = e
			}
		}
	}

	if bestMatch != nil {
		return bestMatch, nil
	}
	if best == nil {
		return nil, ErrNoEvent
	}
	return best, nil
}
