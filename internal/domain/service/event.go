package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/internal/domain/utils/location"
	"github.com/vstrecha/vstrecha/backend/internal/domain/utils/validator"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type EventStorage interface {
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, viewerID string, page dto.EventQuery) ([]entity.Event, int64, bool, error)
	ListForUser(ctx context.Context, userID string, page dto.UserEventQuery, today time.Time) ([]entity.Event, int64, bool, error)
	EndPast(ctx context.Context, today time.Time) (int64, error)
}

// EventOptions are the event settings taken from the configuration.
type EventOptions struct {
	Tags         []string
	DefaultLimit int
	MaxLimit     int
	Location     *time.Location
}

type EventService struct {
	storage EventStorage
	opts    EventOptions
	now     func() time.Time
	logger  *types.Logger
}

func NewEventService(storage EventStorage, opts EventOptions, logger *types.Logger) *EventService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	return &EventService{
		storage: storage,
		opts:    opts,
		now:     time.Now,
		logger:  logger,
	}
}

// Tags returns the tags events may carry.
func (s *EventService) Tags() []string {
	return slices.Clone(s.opts.Tags)
}

// Create stores a new event owned by creatorID. The creator becomes its
// first attendee in the same transaction.
func (s *EventService) Create(ctx context.Context, creatorID string, in dto.EventInput) (*entity.Event, error) {
	if in.Title == nil || in.Body == nil || in.StartDate == nil || in.EndDate == nil {
		return nil, errorz.InvalidField("title, body, start_date and end_date are required")
	}

	event := &entity.Event{
		ID:            uuid.NewString(),
		CreatorID:     creatorID,
		Tags:          []string{},
		Visibility:    entity.VisibilityGlobal,
		Repeatability: entity.RepeatabilityNone,
		Status:        entity.StatusActive,
	}
	in.Apply(event)
	if err := s.validate(event); err != nil {
		return nil, err
	}

	event, err := s.storage.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("event created", "id", event.ID, "creator", creatorID)
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*entity.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errorz.EventNotFound
	}
	return s.storage.Get(ctx, id)
}

// IsCreator reports whether userID created the event.
func (s *EventService) IsCreator(ctx context.Context, eventID, userID string) (bool, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return false, err
	}
	return event.CreatorID == userID, nil
}

// Update applies a partial patch. Only the creator may do it.
func (s *EventService) Update(ctx context.Context, id, userID string, in dto.EventInput) (*entity.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, errorz.NotEventCreator
	}

	in.Apply(event)
	if err = s.validate(event); err != nil {
		return nil, err
	}

	event, err = s.storage.Update(ctx, event)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("event updated", "id", id)
	return event, nil
}

// Delete removes the event with its participations and scans. Only the creator may do it.
func (s *EventService) Delete(ctx context.Context, id, userID string) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatorID != userID {
		return errorz.NotEventCreator
	}
	if err = s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("event deleted", "id", id)
	return nil
}

// EndPast switches every active event whose end date is behind today to ended.
func (s *EventService) EndPast(ctx context.Context) (int64, error) {
	n, err := s.storage.EndPast(ctx, location.Today(s.now(), s.opts.Location))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Infow("events ended", "count", n)
	}
	return n, nil
}

// List returns a page of the events viewerID may see.
func (s *EventService) List(ctx context.Context, viewerID string, q dto.EventQuery) ([]entity.Event, int64, bool, error) {
	if q.Visibility != "" && !q.Visibility.Valid() {
		return nil, 0, false, errorz.InvalidField("visibility must be G or P")
	}
	if q.Repeatability != "" && !q.Repeatability.Valid() {
		return nil, 0, false, errorz.InvalidField("repeatability must be N or R")
	}
	limit, err := s.limit(q.Limit)
	if err != nil {
		return nil, 0, false, err
	}
	q.Limit = limit
	q.LastSeenID = cursor(q.LastSeenID)
	return s.storage.List(ctx, viewerID, q)
}

// ListForUser returns a page of the events userID created or takes part in.
func (s *EventService) ListForUser(ctx context.Context, userID string, q dto.UserEventQuery) ([]entity.Event, int64, bool, error) {
	if q.Filter == "" {
		q.Filter = entity.EventsAll
	}
	limit, err := s.limit(q.Limit)
	if err != nil {
		return nil, 0, false, err
	}
	q.Limit = limit
	q.LastSeenID = cursor(q.LastSeenID)
	return s.storage.ListForUser(ctx, userID, q, location.Today(s.now(), s.opts.Location))
}

// limit applies the default page size. Zero means unset.
func (s *EventService) limit(limit int) (int, error) {
	switch {
	case limit == 0:
		return s.opts.DefaultLimit, nil
	case limit < 0 || limit > s.opts.MaxLimit:
		return 0, errorz.InvalidField(fmt.Sprintf("limit must be between 1 and %d", s.opts.MaxLimit))
	}
	return limit, nil
}

// cursor drops a last seen id that cannot name any event, so the page starts
// from the newest event as it does for an unknown id.
func cursor(lastSeenID string) string {
	if _, err := uuid.Parse(lastSeenID); err != nil {
		return ""
	}
	return lastSeenID
}

func (s *EventService) validate(event *entity.Event) error {
	if bad, ok := validator.Tags(event.Tags, s.opts.Tags); !ok {
		return fmt.Errorf("%w: %s", errorz.InvalidTag, bad)
	}
	switch {
	case !validator.EventTitle(event.Title):
		return errorz.InvalidField("title must be 1 to 200 characters")
	case !validator.EventBody(event.Body):
		return errorz.InvalidField("body must not be empty")
	case !validator.EventDates(event.StartDate, event.EndDate):
		return errorz.InvalidField("end_date must not be before start_date")
	case !validator.RegistrationWindow(event.RegistrationStart, event.RegistrationEnd):
		return errorz.InvalidField("registration_end_date must not be before registration_start_date")
	case !validator.Price(event.Price):
		return errorz.InvalidField("price must not be negative")
	case !validator.MaxParticipants(event.MaxParticipants):
		return errorz.InvalidField("max_participants must be positive")
	case !event.Visibility.Valid():
		return errorz.InvalidField("visibility must be G or P")
	case !event.Repeatability.Valid():
		return errorz.InvalidField("repeatability must be N or R")
	case !event.Status.Valid():
		return errorz.InvalidField("status must be A or E")
	}
	return nil
}
