// Package interval buckets dates into day, week and month keys in a fixed
// reference time zone.
package interval

import (
	"time"

	"github.com/lildude/competitions/internal/competition"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Key returns the bucket key of the instant t in loc. Weeks are keyed by the
// Sunday that ends them.
func Key(t time.Time, loc *time.Location, g competition.Interval) string {
	return keyOf(midnight(t.In(loc)), g)
}

// KeyForDate returns the bucket key of a YYYY-MM-DD calendar date.
func KeyForDate(date string, loc *time.Location, g competition.Interval) (string, error) {
	d, err := time.ParseInLocation(dayLayout, date, loc)
	if err != nil {
		return "", err
	}
	return keyOf(d, g), nil
}

// Current returns the key of the bucket containing now.
func Current(now time.Time, loc *time.Location, g competition.Interval) string {
	return Key(now, loc, g)
}

// Range returns the ordered keys of every bucket from start's through the
// bucket holding the earlier of end and now. end is exclusive.
func Range(start time.Time, end *time.Time, now time.Time, loc *time.Location, g competition.Interval) []string {
	last := now
	if end != nil && !end.After(now) {
		last = end.Add(-time.Nanosecond)
	}
	if last.Before(start) {
		return nil
	}

	lastKey := Key(last, loc, g)
	var keys []string
	for d := bucketStart(midnight(start.In(loc)), g); ; d = step(d, g) {
		k := keyOf(d, g)
		keys = append(keys, k)
		if k >= lastKey {
			break
		}
	}
	return keys
}

func keyOf(d time.Time, g competition.Interval) string {
	switch g {
	case competition.Week:
		return nextSunday(d).Format(dayLayout)
	case competition.Month:
		return d.Format(monthLayout)
	default:
		return d.Format(dayLayout)
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextSunday(d time.Time) time.Time {
	return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
}

// bucketStart aligns d so stepping from it visits every bucket exactly once.
func bucketStart(d time.Time, g competition.Interval) time.Time {
	switch g {
	case competition.Week:
		return nextSunday(d)
	case competition.Month:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	default:
		return d
	}
}

func step(d time.Time, g competition.Interval) time.Time {
	switch g {
	case competition.Week:
		return d.AddDate(0, 0, 7)
	case competition.Month:
		return d.AddDate(0, 1, 0)
	default:
		return d.AddDate(0, 0, 1)
	}
}
