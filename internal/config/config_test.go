package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "CACHE_TTL", "TIMEZONE", "FETCH_WORKERS", "ACTIVITY_SOURCE", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	c := Load()
	if c.Port != "8080" {
		t.Errorf("expected port 8080, got %q", c.Port)
	}
	if c.CacheTTL != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %v", c.CacheTTL)
	}
	if c.FetchWorkers != 8 {
		t.Errorf("expected 8 workers, got %d", c.FetchWorkers)
	}
	if c.ActivitySource != "database" {
		t.Errorf("expected database source, got %q", c.ActivitySource)
	}
	loc, err := c.Location()
	if err != nil || loc.String() != "America/Los_Angeles" {
		t.Errorf("expected America/Los_Angeles, got %v (%v)", loc, err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(Config) bool
	}{
		{"port", map[string]string{"PORT": "3000"}, func(c Config) bool { return c.Port == "3000" }},
		{"ttl", map[string]string{"CACHE_TTL": "90s"}, func(c Config) bool { return c.CacheTTL == 90*time.Second }},
		{"bad ttl", map[string]string{"CACHE_TTL": "soon"}, func(c Config) bool { return c.CacheTTL == 15*time.Minute }},
		{"workers", map[string]string{"FETCH_WORKERS": "3"}, func(c Config) bool { return c.FetchWorkers == 3 }},
		{"zero workers", map[string]string{"FETCH_WORKERS": "0"}, func(c Config) bool { return c.FetchWorkers == 8 }},
		{"strava", map[string]string{"ACTIVITY_SOURCE": "strava", "STRAVA_CLIENT_ID": "42"}, func(c Config) bool {
			return c.ActivitySource == "strava" && c.StravaClientID == "42"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if c := Load(); !tc.check(c) {
				t.Errorf("unexpected config %+v", c)
			}
		})
	}
}

func TestLocationInvalid(t *testing.T) {
	if _, err := (Config{Timezone: "Mars/Olympus_Mons"}).Location(); err == nil {
		t.Error("expected an error for an unknown zone")
	}
}
