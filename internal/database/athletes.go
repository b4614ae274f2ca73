package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgtype"
	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/model"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// SaveAthlete creates or updates the athlete signed in as userID.
func (s *Store) SaveAthlete(ctx context.Context, userID string, stravaID int64, name string, token *oauth2.Token) error {
	var athlete model.Athlete
	err := s.db.WithContext(ctx).Where(model.Athlete{UserID: userID}).FirstOrInit(&athlete).Error
	if err != nil {
		return fmt.Errorf("finding athlete %q: %w", userID, err)
	}

	athlete.StravaAthleteID = stravaID
	athlete.StravaAthleteName = name
	if err := athlete.StravaAuthToken.Set(token); err != nil {
		return fmt.Errorf("encoding token for %q: %w", userID, err)
	}

	if err := s.db.WithContext(ctx).Save(&athlete).Error; err != nil {
		return fmt.Errorf("saving athlete %q: %w", userID, err)
	}
	return nil
}

// Token returns the stored Strava OAuth token of userID.
func (s *Store) Token(ctx context.Context, userID string) (*oauth2.Token, error) {
	var athlete model.Athlete
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&athlete).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &competition.NotFoundError{Resource: "athlete", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("finding athlete %q: %w", userID, err)
	}

	token := &oauth2.Token{}
	if athlete.StravaAuthToken.Status == pgtype.Present {
		if err := athlete.StravaAuthToken.AssignTo(token); err != nil {
			return nil, fmt.Errorf("decoding token for %q: %w", userID, err)
		}
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("no access token stored for %q", userID)
	}
	return token, nil
}

// SaveToken replaces the stored Strava OAuth token of userID.
func (s *Store) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	var blob pgtype.JSONB
	if err := blob.Set(token); err != nil {
		return fmt.Errorf("encoding token for %q: %w", userID, err)
	}
	err := s.db.WithContext(ctx).Model(&model.Athlete{}).Where("user_id = ?", userID).Update("strava_auth_token", blob).Error
	if err != nil {
		return fmt.Errorf("updating token for %q: %w", userID, err)
	}
	return nil
}

// UserIDForAthlete maps a Strava athlete ID to the user signed in with it.
func (s *Store) UserIDForAthlete(ctx context.Context, stravaID int64) (string, error) {
	var athlete model.Athlete
	err := s.db.WithContext(ctx).Where("strava_athlete_id = ?", stravaID).First(&athlete).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &competition.NotFoundError{Resource: "athlete", ID: fmt.Sprint(stravaID)}
	}
	if err != nil {
		return "", fmt.Errorf("finding athlete %d: %w", stravaID, err)
	}
	return athlete.UserID, nil
}
