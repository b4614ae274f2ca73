// Package database stores competitions, participants, athletes and uploaded
// daily activity using gorm.
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/lildude/competitions/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the gorm backed repository. It also serves uploaded daily totals
// to the scoring engine.
type Store struct {
	db  *gorm.DB
	loc *time.Location
}

// InitDB connects to postgres and performs schema migration.
func InitDB(dsn string, loc *time.Location) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return Open(postgres.Open(dsn), loc)
}

// Open connects using the given dialector and migrates the schema. Dates
// passed to DailyTotals are resolved in loc.
func Open(dialector gorm.Dialector, loc *time.Location) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.AutoMigrate(&model.Athlete{}, &model.Competition{}, &model.Participant{}, &model.DailyActivity{})
	if err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}
