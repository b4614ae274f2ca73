package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticUser struct {
	id  string
	err error
}

func (s staticUser) UserID(*http.Request) (string, error) { return s.id, s.err }

func TestRequireAuthentication(t *testing.T) {
	tests := []struct {
		name   string
		users  staticUser
		status int
	}{
		{"signed in", staticUser{id: "1234"}, http.StatusOK},
		{"no session", staticUser{}, http.StatusUnauthorized},
		{"broken session", staticUser{err: errors.New("securecookie: the value is not valid")}, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequireAuthentication(tc.users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = UserID(r.Context())
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/competitions", nil))
			if rr.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rr.Code)
			}
			if seen != tc.users.id {
				t.Errorf("expected user %q in context, got %q", tc.users.id, seen)
			}
		})
	}
}
