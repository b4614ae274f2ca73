package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/lildude/competitions/internal/competition"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many activity fetches run at once.
const DefaultWorkers = 8

// Provider supplies a user's daily distance totals between start and end. A
// nil end means up to now.
type Provider interface {
	DailyTotals(ctx context.Context, userID string, start time.Time, end *time.Time, kinds []string) ([]competition.DailySample, error)
}

// Repository loads competitions and their participants.
type Repository interface {
	GetCompetition(ctx context.Context, id string) (*competition.Competition, error)
	ListParticipants(ctx context.Context, competitionID string) ([]competition.Participant, error)
}

// Engine fetches participants' activity and scores competitions.
type Engine struct {
	Provider   Provider
	Repository Repository
	Location   *time.Location
	Workers    int
	Now        func() time.Time
}

func NewEngine(p Provider, r Repository, loc *time.Location, workers int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{Provider: p, Repository: r, Location: loc, Workers: workers, Now: time.Now}
}

// ScoreByID loads a competition and scores its accepted participants.
func (e *Engine) ScoreByID(ctx context.Context, id string) (*competition.Competition, map[string]Result, error) {
	c, err := e.Repository.GetCompetition(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	participants, err := e.Repository.ListParticipants(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	results, err := e.Score(ctx, c, participants)
	if err != nil {
		return nil, nil, err
	}
	return c, results, nil
}

// Score returns a Result for every accepted participant. Activity is fetched
// concurrently; any fetch failure or cancellation fails the whole call since
// scoring with a partial set of participants would skew clash majorities.
func (e *Engine) Score(ctx context.Context, c *competition.Competition, participants []competition.Participant) (map[string]Result, error) {
	now := e.Now()
	users := unique(competition.AcceptedUserIDs(participants))

	samples := make(map[string][]competition.DailySample, len(users))
	for _, u := range users {
		samples[u] = nil
	}
	if !c.Started(now) {
		return Compute(c, samples, now, e.Location)
	}

	fetched, err := e.fetch(ctx, c, users)
	if err != nil {
		return nil, err
	}
	for i, u := range users {
		samples[u] = fetched[i]
	}

	return Compute(c, samples, now, e.Location)
}

func (e *Engine) fetch(ctx context.Context, c *competition.Competition, users []string) ([][]competition.DailySample, error) {
	fetched := make([][]competition.DailySample, len(users))
	start, end := *c.StartDate, c.EffectiveEnd()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := e.Provider.DailyTotals(gctx, user, start, end, c.ActivityTypes)
			if err != nil {
				return &competition.UpstreamFetchError{UserID: user, Err: err}
			}
			fetched[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scoring competition %q: %w", c.ID, ctxErr)
		}
		return nil, err
	}
	return fetched, nil
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
