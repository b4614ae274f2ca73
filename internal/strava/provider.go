package strava

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"time"

	"github.com/lildude/competitions/internal/client"
	"github.com/lildude/competitions/internal/competition"
	"golang.org/x/oauth2"
)

const dateLayout = "2006-01-02"

// TokenStore loads and persists athlete OAuth tokens.
type TokenStore interface {
	Token(ctx context.Context, userID string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, userID string, token *oauth2.Token) error
}

// Provider sums a user's Strava activities into daily totals. Activities are
// bucketed by the calendar day of their local start time.
type Provider struct {
	Tokens TokenStore
	Config *oauth2.Config
	// MaxPages bounds how many pages of activities are read per lookup. A
	// lookup that would need more fails rather than returning partial totals.
	// Zero means no bound.
	MaxPages int
}

// NewProvider returns a Provider reading tokens from tokens.
func NewProvider(tokens TokenStore, cfg *oauth2.Config) *Provider {
	return &Provider{Tokens: tokens, Config: cfg, MaxPages: 10}
}

// DailyTotals returns one sample per day with activity of a kind in kinds.
// An empty kinds matches every activity.
func (p *Provider) DailyTotals(ctx context.Context, userID string, start time.Time, end *time.Time, kinds []string) ([]competition.DailySample, error) {
	token, err := p.Tokens.Token(ctx, userID)
	if err != nil {
		return nil, err
	}

	ts := p.Config.TokenSource(ctx, token)
	base, err := url.Parse(BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing strava base URL: %w", err)
	}
	sc := client.NewClient(base, oauth2.NewClient(ctx, ts))

	var before time.Time
	if end != nil {
		before = *end
	}

	totals := map[string]float64{}
	for page := 1; ; page++ {
		activities, err := ListActivities(ctx, sc, start, before, page)
		if err != nil {
			return nil, err
		}
		for _, a := range activities {
			if len(kinds) > 0 && !slices.Contains(kinds, a.Type) && !slices.Contains(kinds, a.SportType) {
				continue
			}
			totals[a.StartDateLocal.Format(dateLayout)] += a.Distance
		}
		if len(activities) < perPage {
			break
		}
		if p.MaxPages > 0 && page >= p.MaxPages {
			return nil, fmt.Errorf("more than %d pages of activities for %q", p.MaxPages, userID)
		}
	}

	// Persist refreshed tokens so the next lookup doesn't refresh again.
	if fresh, err := ts.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		if err := p.Tokens.SaveToken(ctx, userID, fresh); err != nil {
			return nil, fmt.Errorf("saving refreshed token for %q: %w", userID, err)
		}
	}

	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	samples := make([]competition.DailySample, 0, len(dates))
	for _, d := range dates {
		samples = append(samples, competition.DailySample{UserID: userID, Date: d, Distance: totals[d]})
	}
	return samples, nil
}
