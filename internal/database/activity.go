package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/model"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// RecordDailyActivity stores a user's total for one day and activity type,
// replacing any earlier upload for the same day.
func (s *Store) RecordDailyActivity(ctx context.Context, sample competition.DailySample) error {
	if _, err := time.Parse(dateLayout, sample.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", sample.Date, err)
	}

	row := model.DailyActivity{
		UserID:       sample.UserID,
		Date:         sample.Date,
		ActivityType: sample.ActivityType,
		Distance:     sample.Distance,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "activity_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"distance", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("recording daily activity for %q on %s: %w", sample.UserID, sample.Date, err)
	}
	return nil
}

// DailyTotals returns one sample per day between start and end summing the
// distance of every activity type in kinds. Days are resolved in the store's
// location and end is exclusive.
func (s *Store) DailyTotals(ctx context.Context, userID string, start time.Time, end *time.Time, kinds []string) ([]competition.DailySample, error) {
	q := s.db.WithContext(ctx).Model(&model.DailyActivity{}).
		Select("date, SUM(distance) AS distance").
		Where("user_id = ? AND date >= ?", userID, start.In(s.loc).Format(dateLayout))
	if end != nil {
		q = q.Where("date <= ?", end.Add(-time.Nanosecond).In(s.loc).Format(dateLayout))
	}
	if len(kinds) > 0 {
		q = q.Where("activity_type IN ?", kinds)
	}

	var rows []struct {
		Date     string
		Distance float64
	}
	if err := q.Group("date").Order("date").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("summing daily activity for %q: %w", userID, err)
	}

	samples := make([]competition.DailySample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, competition.DailySample{UserID: userID, Date: r.Date, Distance: r.Distance})
	}
	return samples, nil
}
