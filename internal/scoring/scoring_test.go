package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/lildude/competitions/internal/competition"
)

var now = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func daysAgo(n int) *time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day()-n, 0, 0, 0, 0, time.UTC)
	return &d
}

func day(n int) string {
	return daysAgo(n).Format("2006-01-02")
}

// samplesFor builds one sample per day, oldest first, ending today.
func samplesFor(user string, totals ...float64) []competition.DailySample {
	var s []competition.DailySample
	for i, d := range totals {
		s = append(s, competition.DailySample{UserID: user, Date: day(len(totals) - 1 - i), Distance: d})
	}
	return s
}

func TestComputeTargets(t *testing.T) {
	c := &competition.Competition{
		Type:          competition.Targets,
		StartDate:     daysAgo(2),
		ActivityTypes: []string{"Run"},
		Options:       competition.Options{Goal: ptr(1.0), Unit: competition.Meters, Interval: competition.Day},
	}
	samples := map[string][]competition.DailySample{"a": samplesFor("a", 1.2, 0.8, 0.5)}

	got, err := Compute(c, samples, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]float64{day(2): 1.2, day(1): 0.8, day(0): 0.5}
	if !reflect.DeepEqual(got["a"].Intervals, want) {
		t.Errorf("expected intervals %v, got %v", want, got["a"].Intervals)
	}
	if got["a"].Score != 2 {
		t.Errorf("expected score 2, got %v", got["a"].Score)
	}
	if got["a"].RemainingLives != nil {
		t.Errorf("expected no lives for targets, got %d", *got["a"].RemainingLives)
	}
}

func TestComputeTargetsScoresEveryoneIndependently(t *testing.T) {
	c := &competition.Competition{
		Type:      competition.Targets,
		StartDate: daysAgo(3),
		Options:   competition.Options{Goal: ptr(1.0), Unit: competition.Meters, Interval: competition.Day},
	}
	samples := map[string][]competition.DailySample{
		"a": samplesFor("a", 2, 2, 2, 2),
		"b": samplesFor("b", 1, 1, 1, 1),
	}

	got, err := Compute(c, samples, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, u := range []string{"a", "b"} {
		if got[u].Score != 4 {
			t.Errorf("%s: expected score 4, got %v", u, got[u].Score)
		}
	}
}

func TestComputeClash(t *testing.T) {
	c := &competition.Competition{
		Type:      competition.Clash,
		StartDate: daysAgo(1),
		Options:   competition.Options{Unit: competition.Meters, Interval: competition.Day, FirstTo: ptr(3)},
	}
	samples := map[string][]competition.DailySample{
		"a": samplesFor("a", 5.0, 1),
		"b": samplesFor("b", 5.0, 9),
		"c": samplesFor("c", 2.0, 0),
	}

	got, err := Compute(c, samples, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]float64{"a": 1, "b": 1, "c": 0}
	for u, w := range want {
		if got[u].Score != w {
			t.Errorf("%s: expected score %v, got %v", u, w, got[u].Score)
		}
	}
}

func TestComputeClashPointsPerInterval(t *testing.T) {
	c := &competition.Competition{
		Type:      competition.Clash,
		StartDate: daysAgo(4),
		Options:   competition.Options{Unit: competition.Meters, Interval: competition.Day},
	}

	tests := []struct {
		desc    string
		samples map[string][]competition.DailySample
		want    map[string]float64
	}{
		{
			desc: "nobody moved",
			samples: map[string][]competition.DailySample{
				"a": nil,
				"b": samplesFor("b", 0, 0, 0, 0, 0),
			},
			want: map[string]float64{"a": 0, "b": 0},
		},
		{
			desc: "single winner each day",
			samples: map[string][]competition.DailySample{
				"a": samplesFor("a", 3, 1, 3, 1, 100),
				"b": samplesFor("b", 1, 3, 1, 3, 0),
			},
			want: map[string]float64{"a": 2, "b": 2},
		},
		{
			desc: "three way tie",
			samples: map[string][]competition.DailySample{
				"a": samplesFor("a", 4, 0, 0, 0, 0),
				"b": samplesFor("b", 4, 0, 0, 0, 0),
				"c": samplesFor("c", 4, 0, 0, 0, 0),
			},
			want: map[string]float64{"a": 1, "b": 1, "c": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Compute(c, tt.samples, now, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for u, w := range tt.want {
				if got[u].Score != w {
					t.Errorf("%s: expected score %v, got %v", u, w, got[u].Score)
				}
			}
		})
	}
}

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		desc      string
		lives     *int
		totals    []float64
		wantScore float64
		wantLives int
	}{
		{
			desc:      "miss on the third of five intervals resets the streak",
			lives:     ptr(1),
			totals:    []float64{1, 1, 0, 1, 1, 0},
			wantScore: 2,
			wantLives: 1,
		},
		{
			desc:      "a spare life absorbs one miss",
			lives:     ptr(2),
			totals:    []float64{1, 1, 0, 1, 1, 0},
			wantScore: 4,
			wantLives: 1,
		},
		{
			desc:      "lives default to one",
			totals:    []float64{1, 0, 1, 0},
			wantScore: 1,
			wantLives: 1,
		},
		{
			desc:      "every interval met keeps all lives",
			lives:     ptr(3),
			totals:    []float64{2, 1.5, 1, 3, 1},
			wantScore: 4,
			wantLives: 3,
		},
		{
			desc:      "the current interval is never penalised",
			lives:     ptr(2),
			totals:    []float64{1, 1, 0},
			wantScore: 2,
			wantLives: 2,
		},
		{
			desc:      "no activity at all",
			lives:     ptr(2),
			totals:    []float64{0, 0, 0, 0, 0},
			wantScore: 0,
			wantLives: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			c := &competition.Competition{
				Type:      competition.Streaks,
				StartDate: daysAgo(len(tt.totals) - 1),
				Options: competition.Options{
					Goal: ptr(1.0), Unit: competition.Meters, Interval: competition.Day, Lives: tt.lives,
				},
			}
			got, err := Compute(c, map[string][]competition.DailySample{"a": samplesFor("a", tt.totals...)}, now, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got["a"].Score != tt.wantScore {
				t.Errorf("expected score %v, got %v", tt.wantScore, got["a"].Score)
			}
			if got["a"].RemainingLives == nil || *got["a"].RemainingLives != tt.wantLives {
				t.Errorf("expected %d lives, got %v", tt.wantLives, got["a"].RemainingLives)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	for _, typ := range []competition.Type{competition.Apex, competition.Race} {
		t.Run(string(typ), func(t *testing.T) {
			c := &competition.Competition{
				Type:      typ,
				StartDate: daysAgo(3),
				Options:   competition.Options{Goal: ptr(10.0), Unit: competition.Kilometers},
			}
			samples := map[string][]competition.DailySample{
				"a": samplesFor("a", 1500, 0, 2500, 500),
				"b": nil,
			}

			got, err := Compute(c, samples, now, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var sum float64
			for _, v := range got["a"].Intervals {
				sum += v
			}
			if got["a"].Score != sum || sum != 4.5 {
				t.Errorf("expected score %v to equal interval sum 4.5, got %v", got["a"].Score, sum)
			}
			if len(got["b"].Intervals) != 4 || got["b"].Score != 0 {
				t.Errorf("expected four zero-filled intervals for b, got %v", got["b"])
			}
		})
	}
}

func TestComputeFinishedCompetitionScoresEveryInterval(t *testing.T) {
	c := &competition.Competition{
		Type:      competition.Clash,
		StartDate: daysAgo(5),
		EndDate:   daysAgo(3),
		Options:   competition.Options{Unit: competition.Meters, Interval: competition.Day},
	}
	samples := map[string][]competition.DailySample{
		"a": samplesFor("a", 1, 5, 9, 9, 9, 9),
		"b": samplesFor("b", 2, 1, 0, 0, 0, 0),
	}

	got, err := Compute(c, samples, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got["a"].Intervals) != 2 {
		t.Errorf("expected two intervals, got %v", got["a"].Intervals)
	}
	if got["a"].Score != 1 || got["b"].Score != 1 {
		t.Errorf("expected 1 point each, got a=%v b=%v", got["a"].Score, got["b"].Score)
	}
}

func TestComputeWeeklyTargets(t *testing.T) {
	// 2026-10-19 is a Monday, so the first week closes on 2026-10-18.
	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	c := &competition.Competition{
		Type:      competition.Targets,
		StartDate: &start,
		Options:   competition.Options{Goal: ptr(10.0), Unit: competition.Kilometers, Interval: competition.Week},
	}
	samples := map[string][]competition.DailySample{
		"a": {
			{Date: "2026-10-12", Distance: 5000},
			{Date: "2026-10-18", Distance: 5000},
			{Date: "2026-10-19", Distance: 3000},
		},
	}

	got, err := Compute(c, samples, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]float64{"2026-10-18": 10, "2026-10-25": 3}
	if !reflect.DeepEqual(got["a"].Intervals, want) {
		t.Errorf("expected %v, got %v", want, got["a"].Intervals)
	}
	if got["a"].Score != 1 {
		t.Errorf("expected score 1, got %v", got["a"].Score)
	}
}

func TestComputeNotStarted(t *testing.T) {
	tests := []struct {
		desc  string
		start *time.Time
	}{
		{"lobby", nil},
		{"scheduled", ptr(now.Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			c := &competition.Competition{
				Type:      competition.Streaks,
				StartDate: tt.start,
				Options:   competition.Options{Goal: ptr(1.0), Unit: competition.Meters, Interval: competition.Day, Lives: ptr(3)},
			}
			got, err := Compute(c, map[string][]competition.DailySample{"a": samplesFor("a", 5, 5)}, now, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got["a"].Score != 0 || len(got["a"].Intervals) != 0 {
				t.Errorf("expected an empty result, got %+v", got["a"])
			}
			if got["a"].RemainingLives == nil || *got["a"].RemainingLives != 3 {
				t.Errorf("expected 3 starting lives, got %v", got["a"].RemainingLives)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	c := &competition.Competition{
		Type:      competition.Clash,
		StartDate: daysAgo(6),
		Options:   competition.Options{Unit: competition.Meters, Interval: competition.Day},
	}
	samples := map[string][]competition.DailySample{
		"a": samplesFor("a", 1, 2, 3, 4, 5, 6, 7),
		"b": samplesFor("b", 7, 6, 5, 4, 3, 2, 1),
		"c": samplesFor("c", 4, 4, 4, 4, 4, 4, 4),
	}

	first, err := Compute(c, samples, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := Compute(c, samples, now, time.UTC)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}

func TestComputeUnsupportedType(t *testing.T) {
	c := &competition.Competition{Type: "relay", StartDate: daysAgo(1)}
	if _, err := Compute(c, nil, now, time.UTC); err == nil {
		t.Error("expected an error for an unknown type")
	}
}

func TestGoalReached(t *testing.T) {
	results := map[string]Result{"a": {Score: 10}, "b": {Score: 9.9}}

	race := &competition.Competition{Type: competition.Race, Options: competition.Options{Goal: ptr(10.0)}}
	if got := GoalReached(race, results); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("expected [a], got %v", got)
	}

	clash := &competition.Competition{Type: competition.Clash, Options: competition.Options{FirstTo: ptr(20)}}
	if got := GoalReached(clash, results); got != nil {
		t.Errorf("expected nobody, got %v", got)
	}

	apex := &competition.Competition{Type: competition.Apex}
	if got := GoalReached(apex, results); got != nil {
		t.Errorf("expected nobody for apex, got %v", got)
	}
}
