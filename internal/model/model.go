package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"gorm.io/gorm"
)

// Athlete represents a signed-in Strava athlete and their OAuth token.
type Athlete struct {
	gorm.Model
	UserID            string `gorm:"uniqueIndex;size:64"`
	StravaAthleteID   int64
	StravaAthleteName string
	StravaAuthToken   pgtype.JSONB `gorm:"type:jsonb"`
}

// Competition represents a competition's stored configuration. Options and
// ActivityTypes are JSON blobs decoded by the database package.
type Competition struct {
	ID            string `gorm:"primaryKey;size:36"`
	Name          string
	OwnerID       string `gorm:"index;size:64"`
	Type          string `gorm:"size:16"`
	StartDate     *time.Time
	EndDate       *time.Time
	ActivityTypes pgtype.JSONB `gorm:"type:jsonb"`
	Options       pgtype.JSONB `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate assigns a random UUID to new competitions.
func (c *Competition) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Participant represents a user's membership of a competition.
type Participant struct {
	gorm.Model
	CompetitionID string `gorm:"uniqueIndex:idx_participant;size:36"`
	UserID        string `gorm:"uniqueIndex:idx_participant;size:64"`
	InviteStatus  string `gorm:"size:16"`
}

// DailyActivity represents a user's total distance in metres for one
// activity type on one calendar day.
type DailyActivity struct {
	gorm.Model
	UserID       string `gorm:"uniqueIndex:idx_daily_activity;size:64"`
	Date         string `gorm:"uniqueIndex:idx_daily_activity;size:10"`
	ActivityType string `gorm:"uniqueIndex:idx_daily_activity;size:32"`
	Distance     float64
}
