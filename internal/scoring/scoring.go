// Package scoring computes competition scores from raw daily activity. Scores
// are never stored: every call recomputes them from the samples it is given.
package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/interval"
)

// Result is a participant's score along with the interval totals it was
// computed from. RemainingLives is only set for streaks competitions.
type Result struct {
	Intervals      map[string]float64 `json:"intervals"`
	Score          float64            `json:"score"`
	RemainingLives *int               `json:"remaining_lives,omitempty"`
}

// Compute scores every user in samples. A user with no samples must still be
// present with a nil slice so they are scored as zero activity.
func Compute(c *competition.Competition, samples map[string][]competition.DailySample, now time.Time, loc *time.Location) (map[string]Result, error) {
	score, ok := scorers[c.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported competition type %q", c.Type)
	}

	results := make(map[string]Result, len(samples))
	if !c.Started(now) {
		for user := range samples {
			results[user] = notStarted(c)
		}
		return results, nil
	}

	table := &Table{
		Keys:    interval.Range(*c.StartDate, c.EffectiveEnd(), now, loc, c.Options.Interval),
		Current: interval.Current(now, loc, c.Options.Interval),
		Totals:  make(map[string]map[string]float64, len(samples)),
	}
	for user, s := range samples {
		totals, err := Aggregate(c, s, table.Keys, loc)
		if err != nil {
			return nil, fmt.Errorf("aggregating activity for user %q: %w", user, err)
		}
		table.Totals[user] = totals
	}

	for user, s := range score(c.Options, table) {
		results[user] = Result{
			Intervals:      table.Totals[user],
			Score:          s.Points,
			RemainingLives: s.RemainingLives,
		}
	}
	return results, nil
}

func notStarted(c *competition.Competition) Result {
	r := Result{Intervals: map[string]float64{}}
	if c.Type == competition.Streaks {
		lives := c.Options.StartingLives()
		r.RemainingLives = &lives
	}
	return r
}

// GoalReached returns the users who have hit the competition's finishing
// line: the distance goal for races, or first_to points where one is set.
// Users are sorted by ID.
func GoalReached(c *competition.Competition, results map[string]Result) []string {
	var target float64
	switch {
	case c.Type == competition.Race:
		target = c.Options.GoalValue()
	case c.Options.FirstTo != nil:
		target = float64(*c.Options.FirstTo)
	default:
		return nil
	}
	if target <= 0 {
		return nil
	}

	var users []string
	for user, r := range results {
		if r.Score >= target {
			users = append(users, user)
		}
	}
	sort.Strings(users)
	return users
}
