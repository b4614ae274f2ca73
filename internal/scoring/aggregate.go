package scoring

import (
	"fmt"
	"time"

	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/interval"
)

// Aggregate sums a user's daily samples into interval totals expressed in the
// competition's unit. Every key in rng is present in the result, zero-filled
// when there was no activity. Samples outside rng or of a kind the
// competition does not count are ignored, as are negative distances.
func Aggregate(c *competition.Competition, samples []competition.DailySample, rng []string, loc *time.Location) (map[string]float64, error) {
	totals := make(map[string]float64, len(rng))
	for _, k := range rng {
		totals[k] = 0
	}

	for _, s := range samples {
		if s.Distance < 0 || !c.AllowsActivity(s.ActivityType) {
			continue
		}
		k, err := interval.KeyForDate(s.Date, loc, c.Options.Interval)
		if err != nil {
			return nil, fmt.Errorf("bucketing sample dated %q: %w", s.Date, err)
		}
		if _, ok := totals[k]; !ok {
			continue
		}
		totals[k] += c.Options.Unit.FromMeters(s.Distance)
	}

	return totals, nil
}
