package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"gorm.io/gorm"
)

// friendGoingEvents selects the events where a direct friend of the viewer
// holds a creator or participant row.
const friendGoingEvents = `SELECT p.event_id FROM participations p
JOIN friend_edges f ON (f.user1 = @viewer AND f.user2 = p.user_id) OR (f.user2 = @viewer AND f.user1 = p.user_id)
WHERE p.role IN @roles`

type EventStorage struct {
	db *gorm.DB
}

func NewEventStorage(db *gorm.DB) *EventStorage {
	return &EventStorage{
		db: db,
	}
}

// Create is a function that creates a new event in the database together
// with the creator's participation row.
func (s *EventStorage) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator", "Participations").Create(event).Error; err != nil {
			return err
		}
		return tx.Create(&entity.Participation{
			ID:      uuid.NewString(),
			EventID: event.ID,
			UserID:  event.CreatorID,
			Role:    entity.RoleCreator,
		}).Error
	})
	return event, err
}

// Get is a function that gets an event from the database by id.
func (s *EventStorage) Get(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	return &event, translate(err, errorz.EventNotFound, nil)
}

// Update is a function that updates an event in the database.
func (s *EventStorage) Update(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Omit("Creator", "Participations").Save(event).Error
	return event, err
}

// Delete removes an event; participations and their scans cascade.
func (s *EventStorage) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.EventNotFound
	}
	return nil
}

// EndPast marks active events that ended before today as ended.
func (s *EventStorage) EndPast(ctx context.Context, today time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&entity.Event{}).
		Where("status = ? AND end_date < ?", string(entity.StatusActive), today).
		Update("status", string(entity.StatusEnded))
	return res.RowsAffected, res.Error
}

// List returns a page of events, newest first, that viewerID may see.
// total counts every matching event regardless of the cursor position.
func (s *EventStorage) List(ctx context.Context, viewerID string, page dto.EventQuery) ([]entity.Event, int64, bool, error) {
	q := s.db.WithContext(ctx).Model(&entity.Event{})

	if len(page.Tags) > 0 {
		q = q.Where("tags && ?", pq.StringArray(page.Tags))
	}
	if page.Visibility != "" {
		q = q.Where("visibility = ?", string(page.Visibility))
	} else {
		q = q.Where(
			"(visibility = @global OR (visibility = @private AND (creator_id = @viewer OR id IN ("+friendGoingEvents+"))))",
			map[string]any{
				"global":  string(entity.VisibilityGlobal),
				"private": string(entity.VisibilityPrivate),
				"viewer":  viewerID,
				"roles":   entity.GoingRoles(),
			},
		)
	}
	if page.Repeatability != "" {
		q = q.Where("repeatability = ?", string(page.Repeatability))
	}

	return s.page(ctx, q, page.LastSeenID, page.Limit)
}

// ListForUser returns a page of events the user created or participates in.
// today is the current calendar day used by the past/actual filters.
func (s *EventStorage) ListForUser(ctx context.Context, userID string, page dto.UserEventQuery, today time.Time) ([]entity.Event, int64, bool, error) {
	q := s.db.WithContext(ctx).
		Model(&entity.Event{}).
		Where("id IN (?)", s.db.Model(&entity.Participation{}).Select("event_id").Where("user_id = ?", userID))

	switch page.Filter {
	case entity.EventsPast:
		q = q.Where("end_date < ?", today)
	case entity.EventsActual:
		q = q.Where("end_date >= ?", today)
	case entity.EventsAll:
	}

	return s.page(ctx, q, page.LastSeenID, page.Limit)
}

// page counts the matching events, then applies the created_at cursor and
// fetches limit+1 rows to detect whether more rows follow. total does not
// depend on the cursor. An unknown cursor id is ignored.
func (s *EventStorage) page(ctx context.Context, q *gorm.DB, lastSeenID string, limit int) ([]entity.Event, int64, bool, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, false, err
	}

	if lastSeenID != "" {
		var anchor entity.Event
		err := s.db.WithContext(ctx).Select("created_at").Where("id = ?", lastSeenID).First(&anchor).Error
		switch {
		case err == nil:
			q = q.Where("created_at < ?", anchor.CreatedAt)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, 0, false, err
		}
	}

	var events []entity.Event
	if err := q.Order("created_at DESC").Limit(limit + 1).Find(&events).Error; err != nil {
		return nil, 0, false, err
	}

	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}
	return events, total, hasMore, nil
}
