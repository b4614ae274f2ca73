package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lildude/competitions/internal/competition"
	"github.com/sirupsen/logrus"
)

// Source returns per-day distance totals for a user.
type Source interface {
	DailyTotals(ctx context.Context, userID string, start time.Time, end *time.Time, kinds []string) ([]competition.DailySample, error)
}

// Provider caches the daily totals of an underlying Source. Entries live in a
// single hash per user so a webhook for that user can drop them all at once.
type Provider struct {
	Source Source
	Cache  Cache
	Log    logrus.FieldLogger
}

// NewProvider wraps src with a read-through cache.
func NewProvider(src Source, c Cache, log logrus.FieldLogger) *Provider {
	return &Provider{Source: src, Cache: c, Log: log}
}

// DailyTotals serves cached totals when present and falls back to the
// source otherwise. Cache failures are logged and never fail the lookup.
func (p *Provider) DailyTotals(ctx context.Context, userID string, start time.Time, end *time.Time, kinds []string) ([]competition.DailySample, error) {
	key, field := userKey(userID), signature(start, end, kinds)

	var samples []competition.DailySample
	hit, err := p.Cache.HGetJSON(ctx, key, field, &samples)
	if err != nil {
		p.Log.WithError(err).WithField("user_id", userID).Warn("reading cached daily totals")
	}
	if hit {
		return samples, nil
	}

	samples, err = p.Source.DailyTotals(ctx, userID, start, end, kinds)
	if err != nil {
		return nil, err
	}

	if err := p.Cache.HSetJSON(ctx, key, field, samples); err != nil {
		p.Log.WithError(err).WithField("user_id", userID).Warn("caching daily totals")
	}
	return samples, nil
}

// Invalidate drops every cached lookup for userID.
func (p *Provider) Invalidate(ctx context.Context, userID string) error {
	if err := p.Cache.Delete(ctx, userKey(userID)); err != nil {
		return fmt.Errorf("invalidating daily totals of %q: %w", userID, err)
	}
	return nil
}

func userKey(userID string) string {
	return "daily_totals:" + userID
}

func signature(start time.Time, end *time.Time, kinds []string) string {
	to := "open"
	if end != nil {
		to = end.UTC().Format(time.RFC3339Nano)
	}
	return start.UTC().Format(time.RFC3339Nano) + "|" + to + "|" + strings.Join(kinds, ",")
}
