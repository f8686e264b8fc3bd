package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipationStorage struct {
	db *gorm.DB
}

func NewParticipationStorage(db *gorm.DB) *ParticipationStorage {
	return &ParticipationStorage{
		db: db,
	}
}

// Upsert sets the role of userID in eventID, inserting the row if needed.
//
// The event row is locked FOR UPDATE for the duration of the transaction and
// check sees the attendance count taken under that lock, so concurrent joins
// of the same event cannot both pass a capacity check. existing is the
// current row of userID or nil. A non-nil error from check aborts the
// transaction and is returned as is.
func (s *ParticipationStorage) Upsert(
	ctx context.Context,
	eventID, userID string,
	role entity.Role,
	check func(event *entity.Event, going int64, existing *entity.Participation) error,
) (*entity.Participation, error) {
	var participation entity.Participation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event entity.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", eventID).First(&event).Error
		if err != nil {
			return translate(err, errorz.EventNotFound, nil)
		}

		var going int64
		err = tx.Model(&entity.Participation{}).
			Where("event_id = ? AND role IN ?", eventID, entity.GoingRoles()).
			Count(&going).Error
		if err != nil {
			return err
		}

		var existing *entity.Participation
		err = tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&participation).Error
		switch {
		case err == nil:
			existing = &participation
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err = check(&event, going, existing); err != nil {
			return err
		}

		if existing != nil {
			participation.Role = role
			return tx.Model(&participation).Update("role", string(role)).Error
		}
		participation = entity.Participation{
			ID:      uuid.NewString(),
			EventID: eventID,
			UserID:  userID,
			Role:    role,
		}
		return tx.Omit("User", "Scans").Create(&participation).Error
	})
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

func (s *ParticipationStorage) Get(ctx context.Context, eventID, userID string) (*entity.Participation, error) {
	var participation entity.Participation
	err := s.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).First(&participation).Error
	return &participation, translate(err, errorz.NotParticipating, nil)
}

func (s *ParticipationStorage) GetByID(ctx context.Context, id string) (*entity.Participation, error) {
	var participation entity.Participation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&participation).Error
	return &participation, translate(err, errorz.ParticipationNotFound, nil)
}

// Delete removes the row of userID in eventID.
func (s *ParticipationStorage) Delete(ctx context.Context, eventID, userID string) error {
	res := s.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&entity.Participation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.NotParticipating
	}
	return nil
}

// CountGoing counts creator and participant rows of the event.
func (s *ParticipationStorage) CountGoing(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Participation{}).
		Where("event_id = ? AND role IN ?", eventID, entity.GoingRoles()).
		Count(&count).Error
	return count, err
}

// CountGoingAmong counts creator and participant rows of the event held by userIDs.
func (s *ParticipationStorage) CountGoingAmong(ctx context.Context, eventID string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Participation{}).
		Where("event_id = ? AND role IN ? AND user_id IN ?", eventID, entity.GoingRoles(), userIDs).
		Count(&count).Error
	return count, err
}
