package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgtype"
	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/model"
	"gorm.io/gorm"
)

// CreateCompetition stores c and adds its owner as an accepted participant.
func (s *Store) CreateCompetition(ctx context.Context, c *competition.Competition) (*competition.Competition, error) {
	row, err := toModel(c)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("creating competition: %w", err)
		}
		owner := model.Participant{CompetitionID: row.ID, UserID: row.OwnerID, InviteStatus: string(competition.Accepted)}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("adding owner as participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fromModel(row)
}

// GetCompetition returns the competition with the given ID.
func (s *Store) GetCompetition(ctx context.Context, id string) (*competition.Competition, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromModel(row)
}

// ListCompetitions returns the competitions userID owns or has not declined.
func (s *Store) ListCompetitions(ctx context.Context, userID string) ([]competition.Competition, error) {
	var rows []model.Competition
	memberOf := s.db.Model(&model.Participant{}).
		Select("competition_id").
		Where("user_id = ? AND invite_status <> ?", userID, string(competition.Declined))
	err := s.db.WithContext(ctx).Where("id IN (?)", memberOf).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing competitions for %q: %w", userID, err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for i := range rows {
		c, err := fromModel(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// UpdateCompetition replaces the configuration of c. Only the owner may
// update a competition and ownership cannot change. An update without a start
// date keeps the stored one, so a started competition never returns to the
// lobby.
func (s *Store) UpdateCompetition(ctx context.Context, userID string, c *competition.Competition) (*competition.Competition, error) {
	existing, err := s.find(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != userID {
		return nil, &competition.AuthorizationError{UserID: userID, Action: "update competition " + c.ID}
	}

	c.OwnerID = existing.OwnerID
	if c.StartDate == nil {
		c.StartDate = existing.StartDate
	}
	row, err := toModel(c)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(existing).
		Select("Name", "Type", "StartDate", "EndDate", "ActivityTypes", "Options").
		Updates(row).Error
	if err != nil {
		return nil, fmt.Errorf("updating competition %q: %w", c.ID, err)
	}
	return s.GetCompetition(ctx, c.ID)
}

// StartCompetition sets the start date of a lobby competition to now.
func (s *Store) StartCompetition(ctx context.Context, id, userID string, now time.Time) (*competition.Competition, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != userID {
		return nil, &competition.AuthorizationError{UserID: userID, Action: "start competition " + id}
	}
	if existing.StartDate != nil {
		return nil, competition.ErrAlreadyStarted
	}

	if err := s.db.WithContext(ctx).Model(existing).Update("start_date", now).Error; err != nil {
		return nil, fmt.Errorf("starting competition %q: %w", id, err)
	}
	return s.GetCompetition(ctx, id)
}

// DeleteCompetition removes a competition and its participants. Only the
// owner may delete it.
func (s *Store) DeleteCompetition(ctx context.Context, id, userID string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != userID {
		return &competition.AuthorizationError{UserID: userID, Action: "delete competition " + id}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("competition_id = ?", id).Delete(&model.Participant{}).Error; err != nil {
			return fmt.Errorf("deleting participants of %q: %w", id, err)
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("deleting competition %q: %w", id, err)
		}
		return nil
	})
}

// ListParticipants returns every participant of a competition, whatever
// their invite status.
func (s *Store) ListParticipants(ctx context.Context, competitionID string) ([]competition.Participant, error) {
	var rows []model.Participant
	err := s.db.WithContext(ctx).Where("competition_id = ?", competitionID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing participants of %q: %w", competitionID, err)
	}

	out := make([]competition.Participant, 0, len(rows))
	for _, r := range rows {
		out = append(out, competition.Participant{
			CompetitionID: r.CompetitionID,
			UserID:        r.UserID,
			InviteStatus:  competition.InviteStatus(r.InviteStatus),
		})
	}
	return out, nil
}

// Invite adds userID to a competition as a pending participant. Inviting an
// existing participant leaves their status untouched.
func (s *Store) Invite(ctx context.Context, competitionID, ownerID, userID string) (*competition.Participant, error) {
	existing, err := s.find(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != ownerID {
		return nil, &competition.AuthorizationError{UserID: ownerID, Action: "invite to competition " + competitionID}
	}

	var row model.Participant
	err = s.db.WithContext(ctx).
		Where(model.Participant{CompetitionID: competitionID, UserID: userID}).
		Attrs(model.Participant{InviteStatus: string(competition.Pending)}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, fmt.Errorf("inviting %q to %q: %w", userID, competitionID, err)
	}

	return &competition.Participant{
		CompetitionID: row.CompetitionID,
		UserID:        row.UserID,
		InviteStatus:  competition.InviteStatus(row.InviteStatus),
	}, nil
}

// RespondToInvite records userID's answer to their invite.
func (s *Store) RespondToInvite(ctx context.Context, competitionID, userID string, status competition.InviteStatus) (*competition.Participant, error) {
	if status != competition.Accepted && status != competition.Declined {
		return nil, &competition.ConfigurationError{Fields: []string{"invite_status"}}
	}

	var row model.Participant
	err := s.db.WithContext(ctx).Where("competition_id = ? AND user_id = ?", competitionID, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &competition.NotFoundError{Resource: "participant", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("finding participant %q: %w", userID, err)
	}

	if err := s.db.WithContext(ctx).Model(&row).Update("invite_status", string(status)).Error; err != nil {
		return nil, fmt.Errorf("updating invite for %q: %w", userID, err)
	}
	return &competition.Participant{CompetitionID: competitionID, UserID: userID, InviteStatus: status}, nil
}

func (s *Store) find(ctx context.Context, id string) (*model.Competition, error) {
	var row model.Competition
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &competition.NotFoundError{Resource: "competition", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("finding competition %q: %w", id, err)
	}
	return &row, nil
}

func toModel(c *competition.Competition) (*model.Competition, error) {
	row := &model.Competition{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		Type:      string(c.Type),
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	}
	kinds := c.ActivityTypes
	if kinds == nil {
		kinds = []string{}
	}
	if err := row.ActivityTypes.Set(kinds); err != nil {
		return nil, fmt.Errorf("encoding activity types: %w", err)
	}
	if err := row.Options.Set(c.Options); err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}
	return row, nil
}

func fromModel(row *model.Competition) (*competition.Competition, error) {
	c := &competition.Competition{
		ID:        row.ID,
		Name:      row.Name,
		OwnerID:   row.OwnerID,
		Type:      competition.Type(row.Type),
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
	}
	if row.ActivityTypes.Status == pgtype.Present {
		if err := row.ActivityTypes.AssignTo(&c.ActivityTypes); err != nil {
			return nil, fmt.Errorf("decoding activity types of %q: %w", row.ID, err)
		}
	}
	if row.Options.Status == pgtype.Present {
		if err := row.Options.AssignTo(&c.Options); err != nil {
			return nil, fmt.Errorf("decoding options of %q: %w", row.ID, err)
		}
	}
	return c, nil
}
