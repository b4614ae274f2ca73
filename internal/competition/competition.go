// Package competition holds the competition configuration types shared by the
// scoring engine, storage and HTTP layers.
package competition

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type is the rule set a competition is scored with.
type Type string

const (
	Streaks Type = "streaks"
	Apex    Type = "apex"
	Clash   Type = "clash"
	Targets Type = "targets"
	Race    Type = "race"
)

// Types lists every supported competition type.
var Types = []Type{Streaks, Apex, Clash, Targets, Race}

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// DisplayName returns the title-cased name shown to clients.
func (t Type) DisplayName() string {
	return cases.Title(language.English).String(string(t))
}

// Interval is the granularity competitions bucket activity into.
type Interval string

const (
	Day   Interval = "day"
	Week  Interval = "week"
	Month Interval = "month"
)

func (i Interval) Valid() bool {
	return i == Day || i == Week || i == Month
}

// Unit is the distance unit goals and scores are expressed in.
type Unit string

const (
	Meters     Unit = "m"
	Kilometers Unit = "km"
	Miles      Unit = "mi"
)

const metersPerMile = 1609.344

func (u Unit) Valid() bool {
	return u == Meters || u == Kilometers || u == Miles
}

// FromMeters converts a distance in metres into u.
func (u Unit) FromMeters(m float64) float64 {
	switch u {
	case Kilometers:
		return m / 1000
	case Miles:
		return m / metersPerMile
	default:
		return m
	}
}

// Options are the type specific settings of a competition. Which fields are
// required depends on the competition Type, see Validate.
type Options struct {
	Goal          *float64 `json:"goal,omitempty"`
	Unit          Unit     `json:"unit,omitempty"`
	FirstTo       *int     `json:"first_to,omitempty"`
	Interval      Interval `json:"interval,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	Lives         *int     `json:"lives,omitempty"`
	History       bool     `json:"history,omitempty"`
}

// StartingLives is the number of lives a streaks participant starts with.
func (o Options) StartingLives() int {
	if o.Lives != nil && *o.Lives > 0 {
		return *o.Lives
	}
	return 1
}

// GoalValue returns the goal, or zero when none is set.
func (o Options) GoalValue() float64 {
	if o.Goal == nil {
		return 0
	}
	return *o.Goal
}

// Competition is an immutable snapshot of a competition's configuration.
type Competition struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	OwnerID       string     `json:"owner_id"`
	Type          Type       `json:"type"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ActivityTypes []string   `json:"activity_types"`
	Options       Options    `json:"options"`
}

// EffectiveEnd returns the instant the competition finishes. An explicit end
// date wins over duration_hours; nil means open-ended.
func (c *Competition) EffectiveEnd() *time.Time {
	if c.EndDate != nil {
		return c.EndDate
	}
	if c.StartDate != nil && c.Options.DurationHours != nil {
		end := c.StartDate.Add(time.Duration(*c.Options.DurationHours * float64(time.Hour)))
		return &end
	}
	return nil
}

// Started reports whether the competition has a start date at or before now.
func (c *Competition) Started(now time.Time) bool {
	return c.StartDate != nil && !c.StartDate.After(now)
}

// Status resolves the competition's lifecycle state at now.
func (c *Competition) Status(now time.Time) Status {
	return ResolveStatus(c.StartDate, c.EffectiveEnd(), now)
}

// AllowsActivity reports whether kind counts towards the competition. An
// empty kind is treated as already filtered by the provider.
func (c *Competition) AllowsActivity(kind string) bool {
	if kind == "" {
		return true
	}
	for _, t := range c.ActivityTypes {
		if t == kind {
			return true
		}
	}
	return false
}

// InviteStatus is a participant's response to a competition invite.
type InviteStatus string

const (
	Pending  InviteStatus = "pending"
	Accepted InviteStatus = "accepted"
	Declined InviteStatus = "declined"
)

func (s InviteStatus) Valid() bool {
	return s == Pending || s == Accepted || s == Declined
}

// Participant links a user to a competition.
type Participant struct {
	CompetitionID string       `json:"competition_id"`
	UserID        string       `json:"user_id"`
	InviteStatus  InviteStatus `json:"invite_status"`
}

// AcceptedUserIDs returns the user IDs of accepted participants, preserving order.
func AcceptedUserIDs(participants []Participant) []string {
	var ids []string
	for _, p := range participants {
		if p.InviteStatus == Accepted {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// DailySample is one user's total distance, in metres, for a single
// calendar day. Date is a civil date formatted as YYYY-MM-DD.
type DailySample struct {
	UserID       string  `json:"user_id"`
	Date         string  `json:"date"`
	ActivityType string  `json:"activity_type,omitempty"`
	Distance     float64 `json:"distance"`
}
