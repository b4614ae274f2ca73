package competition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyStarted is returned when starting a competition that has a start date.
var ErrAlreadyStarted = errors.New("competition already started")

// ConfigurationError lists every missing or invalid option of a competition.
type ConfigurationError struct {
	Fields []string
}

func (e *ConfigurationError) Error() string {
	return "missing or invalid competition options: " + strings.Join(e.Fields, ", ")
}

// NotFoundError is returned when a competition or participant does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// AuthorizationError is returned when a user attempts an owner-only change.
type AuthorizationError struct {
	UserID string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not allowed to %s", e.UserID, e.Action)
}

// UpstreamFetchError wraps a failure to fetch a participant's activity.
type UpstreamFetchError struct {
	UserID string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetching activity for user %q: %v", e.UserID, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}
