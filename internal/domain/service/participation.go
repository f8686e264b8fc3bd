package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type ParticipationStorage interface {
	Upsert(
		ctx context.Context,
		eventID, userID string,
		role entity.Role,
		check func(event *entity.Event, going int64, existing *entity.Participation) error,
	) (*entity.Participation, error)
	Get(ctx context.Context, eventID, userID string) (*entity.Participation, error)
	GetByID(ctx context.Context, id string) (*entity.Participation, error)
	Delete(ctx context.Context, eventID, userID string) error
	CountGoing(ctx context.Context, eventID string) (int64, error)
	CountGoingAmong(ctx context.Context, eventID string, userIDs []string) (int64, error)
}

type ScanStorage interface {
	Create(ctx context.Context, scan *entity.AttendanceScan) (*entity.AttendanceScan, error)
	CountByParticipation(ctx context.Context, participationID string) (int64, error)
}

type participationEventStorage interface {
	Get(ctx context.Context, id string) (*entity.Event, error)
}

// ParticipationService runs the per (event, user) role state machine and
// attendance confirmation.
type ParticipationService struct {
	storage ParticipationStorage
	scans   ScanStorage
	events  participationEventStorage
	now     func() time.Time
	logger  *types.Logger
}

func NewParticipationService(
	storage ParticipationStorage,
	scans ScanStorage,
	events participationEventStorage,
	logger *types.Logger,
) *ParticipationService {
	return &ParticipationService{
		storage: storage,
		scans:   scans,
		events:  events,
		now:     time.Now,
		logger:  logger,
	}
}

// Join makes user a participant of the event. Joining twice keeps a single
// row. Admins skip the capacity check but not the registration window.
func (s *ParticipationService) Join(ctx context.Context, eventID string, user *entity.Profile) (*entity.Participation, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, errorz.EventNotFound
	}

	now := s.now()
	participation, err := s.storage.Upsert(ctx, eventID, user.ID, entity.RoleParticipant,
		func(event *entity.Event, going int64, existing *entity.Participation) error {
			if event.CreatorID == user.ID {
				return errorz.CreatorCannotJoinOwnEvent
			}
			if !event.RegistrationOpen(now) {
				return errorz.RegistrationClosed
			}
			if existing != nil && existing.Role.IsGoing() {
				return nil
			}
			if !user.IsAdmin && event.Full(going) {
				return errorz.EventFull
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("joined event", "event", eventID, "user", user.ID, "admin", user.IsAdmin)
	return participation, nil
}

// Leave removes the user's row. The creator can never leave.
func (s *ParticipationService) Leave(ctx context.Context, eventID, userID string) error {
	if _, err := uuid.Parse(eventID); err != nil {
		return errorz.EventNotFound
	}
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID == userID {
		return errorz.CreatorCannotLeaveOwnEvent
	}
	if err = s.storage.Delete(ctx, eventID, userID); err != nil {
		return err
	}

	s.logger.Infow("left event", "event", eventID, "user", userID)
	return nil
}

// Participation returns the stored row of userID in the event, or nil when
// the user is only a viewer.
func (s *ParticipationService) Participation(ctx context.Context, eventID, userID string) (*entity.Participation, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, nil
	}
	participation, err := s.storage.Get(ctx, eventID, userID)
	if errors.Is(err, errorz.NotParticipating) {
		return nil, nil
	}
	return participation, err
}

// Role returns the stored role of userID in the event, RoleViewer without a row.
func (s *ParticipationService) Role(ctx context.Context, eventID, userID string) (entity.Role, error) {
	participation, err := s.Participation(ctx, eventID, userID)
	if err != nil {
		return "", err
	}
	if participation == nil {
		return entity.RoleViewer, nil
	}
	return participation.Role, nil
}

func (s *ParticipationService) CountGoing(ctx context.Context, eventID string) (int64, error) {
	return s.storage.CountGoing(ctx, eventID)
}

// CountGoingAmong counts the attendees of the event found in userIDs.
func (s *ParticipationService) CountGoingAmong(ctx context.Context, eventID string, userIDs []string) (int64, error) {
	return s.storage.CountGoingAmong(ctx, eventID, userIDs)
}

// RegistrationAvailable is evaluated against the live count on every call.
func (s *ParticipationService) RegistrationAvailable(ctx context.Context, event *entity.Event) (bool, error) {
	going, err := s.storage.CountGoing(ctx, event.ID)
	if err != nil {
		return false, err
	}
	return event.RegistrationAvailable(s.now(), going), nil
}

// RecordScan confirms the participation as attended. Every call adds a scan.
func (s *ParticipationService) RecordScan(ctx context.Context, participationID string, operatorID int64) (*entity.Participation, error) {
	if _, err := uuid.Parse(participationID); err != nil {
		return nil, errorz.ParticipationNotFound
	}
	participation, err := s.storage.GetByID(ctx, participationID)
	if err != nil {
		return nil, err
	}

	_, err = s.scans.Create(ctx, &entity.AttendanceScan{
		ID:              uuid.NewString(),
		ParticipationID: participation.ID,
		ScannedBy:       operatorID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("attendance scanned", "participation", participationID, "operator", operatorID)
	return participation, nil
}

// Attended reports whether the participation was scanned at least once.
func (s *ParticipationService) Attended(ctx context.Context, participationID string) (bool, error) {
	count, err := s.scans.CountByParticipation(ctx, participationID)
	return count > 0, err
}
