package competition

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is a competition's lifecycle state. It is never stored.
type Status string

const (
	Lobby     Status = "lobby"
	Scheduled Status = "scheduled"
	Active    Status = "active"
	Finished  Status = "finished"
)

func (s Status) DisplayName() string {
	return cases.Title(language.English).String(string(s))
}

// ResolveStatus derives the lifecycle state from the start and end instants.
// A nil start means the competition is still in its lobby; a nil end means it
// runs until stopped.
func ResolveStatus(start, end *time.Time, now time.Time) Status {
	switch {
	case start == nil:
		return Lobby
	case start.After(now):
		return Scheduled
	case end != nil && !end.After(now):
		return Finished
	default:
		return Active
	}
}
