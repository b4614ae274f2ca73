package activity

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/middleware"
	"github.com/sirupsen/logrus"
)

type memoryRecorder struct {
	samples []competition.DailySample
	err     error
}

func (m *memoryRecorder) RecordDailyActivity(_ context.Context, s competition.DailySample) error {
	if m.err != nil {
		return m.err
	}
	m.samples = append(m.samples, s)
	return nil
}

type invalidations []string

func (i *invalidations) Invalidate(_ context.Context, userID string) error {
	*i = append(*i, userID)
	return nil
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		recordErr  error
		wantStatus int
	}{
		{"records a run", "/activity/2026-10-19", `{"activity_type":"Run","distance":5012.5}`, nil, http.StatusOK},
		{"zero distance is allowed", "/activity/2026-10-19", `{"activity_type":"Walk","distance":0}`, nil, http.StatusOK},
		{"bad date", "/activity/19-10-2026", `{"activity_type":"Run","distance":1}`, nil, http.StatusBadRequest},
		{"negative distance", "/activity/2026-10-19", `{"activity_type":"Run","distance":-1}`, nil, http.StatusBadRequest},
		{"missing distance", "/activity/2026-10-19", `{"activity_type":"Run"}`, nil, http.StatusBadRequest},
		{"missing type", "/activity/2026-10-19", `{"distance":10}`, nil, http.StatusBadRequest},
		{"malformed body", "/activity/2026-10-19", `{`, nil, http.StatusBadRequest},
		{"store failure", "/activity/2026-10-19", `{"activity_type":"Run","distance":1}`, errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := logrus.New()
			log.SetOutput(io.Discard)
			rec := &memoryRecorder{err: tc.recordErr}
			inv := &invalidations{}
			h := &Handler{Recorder: rec, Cache: inv, Log: log}
			r := mux.NewRouter()
			h.Register(r)

			req := httptest.NewRequest(http.MethodPut, tc.path, strings.NewReader(tc.body))
			req = req.WithContext(middleware.WithUserID(req.Context(), "alice"))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body)
			}
			if tc.wantStatus != http.StatusOK {
				if len(*inv) != 0 {
					t.Error("expected no cache invalidation on failure")
				}
				return
			}
			if len(rec.samples) != 1 || rec.samples[0].UserID != "alice" || rec.samples[0].Date != "2026-10-19" {
				t.Errorf("unexpected samples %v", rec.samples)
			}
			if len(*inv) != 1 || (*inv)[0] != "alice" {
				t.Errorf("expected alice's cache to be invalidated, got %v", *inv)
			}
		})
	}
}
