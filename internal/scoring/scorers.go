package scoring

import "github.com/lildude/competitions/internal/competition"

// Table is the per-interval totals of every accepted participant, walked in
// chronological order by the scorers.
type Table struct {
	Keys    []string
	Current string
	Totals  map[string]map[string]float64
}

// Closed returns the keys of every interval that has finished, i.e. all keys
// before the current one.
func (t *Table) Closed() []string {
	for i, k := range t.Keys {
		if k == t.Current {
			return t.Keys[:i]
		}
	}
	return t.Keys
}

// Score is a single participant's outcome from one scorer.
type Score struct {
	Points         float64
	RemainingLives *int
}

type scorer func(o competition.Options, t *Table) map[string]Score

var scorers = map[competition.Type]scorer{
	competition.Streaks: scoreStreaks,
	competition.Apex:    scoreTotal,
	competition.Clash:   scoreClash,
	competition.Targets: scoreTargets,
	competition.Race:    scoreTotal,
}

// scoreStreaks counts consecutive closed intervals at or above the goal. A
// miss costs a life; losing the last life resets both the streak and lives.
func scoreStreaks(o competition.Options, t *Table) map[string]Score {
	goal := o.GoalValue()
	start := o.StartingLives()
	scores := make(map[string]Score, len(t.Totals))

	for user, totals := range t.Totals {
		points, lives := 0.0, start
		for _, k := range t.Closed() {
			if totals[k] >= goal {
				points++
				continue
			}
			lives--
			if lives == 0 {
				points, lives = 0, start
			}
		}
		remaining := lives
		scores[user] = Score{Points: points, RemainingLives: &remaining}
	}
	return scores
}

// scoreTotal is the sum of every elapsed interval, current included.
func scoreTotal(_ competition.Options, t *Table) map[string]Score {
	scores := make(map[string]Score, len(t.Totals))
	for user, totals := range t.Totals {
		var sum float64
		for _, k := range t.Keys {
			sum += totals[k]
		}
		scores[user] = Score{Points: sum}
	}
	return scores
}

// scoreClash awards a point per closed interval to everyone tied at the
// highest positive total.
func scoreClash(_ competition.Options, t *Table) map[string]Score {
	scores := make(map[string]Score, len(t.Totals))
	for user := range t.Totals {
		scores[user] = Score{}
	}

	for _, k := range t.Closed() {
		var best float64
		for _, totals := range t.Totals {
			if totals[k] > best {
				best = totals[k]
			}
		}
		if best <= 0 {
			continue
		}
		for user, totals := range t.Totals {
			if totals[k] == best {
				s := scores[user]
				s.Points++
				scores[user] = s
			}
		}
	}
	return scores
}

// scoreTargets awards a point for every interval, current included, where
// the participant reached the goal.
func scoreTargets(o competition.Options, t *Table) map[string]Score {
	goal := o.GoalValue()
	scores := make(map[string]Score, len(t.Totals))
	for user, totals := range t.Totals {
		var points float64
		for _, k := range t.Keys {
			if totals[k] >= goal {
				points++
			}
		}
		scores[user] = Score{Points: points}
	}
	return scores
}
