// Package sessions keeps the signed-in user in a cookie session.
package sessions

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "competitions-session"
	userIDKey   = "user_id"
)

// Store wraps a gorilla cookie store.
type Store struct {
	store *sessions.CookieStore
}

// NewStore returns a cookie store signed with key. Cookies are only sent over
// HTTPS when secure is set.
func NewStore(key string, secure bool) (*Store, error) {
	if key == "" {
		return nil, errors.New("SESSION_KEY environment variable not set")
	}
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 30, // 30 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{store: store}, nil
}

// GetSession retrieves a session from the request.
func (s *Store) GetSession(r *http.Request) (*sessions.Session, error) {
	return s.store.Get(r, sessionName)
}

// SaveSession saves the session.
func (s *Store) SaveSession(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return s.store.Save(r, w, session)
}

// UserID returns the signed-in user, or an empty string.
func (s *Store) UserID(r *http.Request) (string, error) {
	session, err := s.GetSession(r)
	if err != nil {
		return "", err
	}
	id, _ := session.Values[userIDKey].(string)
	return id, nil
}

// SignIn records userID as the signed-in user.
func (s *Store) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	session, err := s.GetSession(r)
	if err != nil {
		// A cookie signed with an old key still yields a usable new session.
		session, _ = s.store.New(r, sessionName)
	}
	session.Values[userIDKey] = userID
	return s.SaveSession(r, w, session)
}
