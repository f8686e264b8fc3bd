package service

import (
	"context"
	"time"

	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
)

type visibilityFriendService interface {
	DirectFriends(ctx context.Context, id string) ([]string, error)
	FriendsOfFriends(ctx context.Context, id string) ([]string, error)
}

type visibilityEventService interface {
	Get(ctx context.Context, id string) (*entity.Event, error)
	List(ctx context.Context, viewerID string, q dto.EventQuery) ([]entity.Event, int64, bool, error)
	ListForUser(ctx context.Context, userID string, q dto.UserEventQuery) ([]entity.Event, int64, bool, error)
}

type visibilityParticipationService interface {
	Participation(ctx context.Context, eventID, userID string) (*entity.Participation, error)
	Attended(ctx context.Context, participationID string) (bool, error)
	CountGoing(ctx context.Context, eventID string) (int64, error)
	CountGoingAmong(ctx context.Context, eventID string, userIDs []string) (int64, error)
}

// VisibilityService decides what a viewer may see and join, and computes the
// social counters shown next to every event.
type VisibilityService struct {
	friends        visibilityFriendService
	events         visibilityEventService
	participations visibilityParticipationService
	now            func() time.Time
}

func NewVisibilityService(
	friends visibilityFriendService,
	events visibilityEventService,
	participations visibilityParticipationService,
) *VisibilityService {
	return &VisibilityService{
		friends:        friends,
		events:         events,
		participations: participations,
		now:            time.Now,
	}
}

// neighborhood is the viewer's friend graph, loaded once per request.
type neighborhood struct {
	direct           []string
	friendsOfFriends []string
}

func (s *VisibilityService) neighborhood(ctx context.Context, viewerID string) (neighborhood, error) {
	direct, err := s.friends.DirectFriends(ctx, viewerID)
	if err != nil {
		return neighborhood{}, err
	}
	fof, err := s.friends.FriendsOfFriends(ctx, viewerID)
	if err != nil {
		return neighborhood{}, err
	}
	return neighborhood{direct: direct, friendsOfFriends: fof}, nil
}

// FriendsGoingCount counts direct friends of viewerID attending the event.
func (s *VisibilityService) FriendsGoingCount(ctx context.Context, eventID, viewerID string) (int, error) {
	direct, err := s.friends.DirectFriends(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	count, err := s.participations.CountGoingAmong(ctx, eventID, direct)
	return int(count), err
}

// FriendsOfFriendsGoingCount counts friends of friends of viewerID attending the event.
func (s *VisibilityService) FriendsOfFriendsGoingCount(ctx context.Context, eventID, viewerID string) (int, error) {
	fof, err := s.friends.FriendsOfFriends(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	count, err := s.participations.CountGoingAmong(ctx, eventID, fof)
	return int(count), err
}

// CanView reports whether viewerID may see the event. A private event is
// visible to its creator and to anyone with a direct friend attending it.
func (s *VisibilityService) CanView(ctx context.Context, event *entity.Event, viewerID string) (bool, error) {
	var friendsGoing int
	if event.CreatorID != viewerID && event.Visibility == entity.VisibilityPrivate {
		var err error
		friendsGoing, err = s.FriendsGoingCount(ctx, event.ID, viewerID)
		if err != nil {
			return false, err
		}
	}
	return visibleTo(event, viewerID, int64(friendsGoing)), nil
}

// CanJoin reports whether a join by viewer would currently succeed.
func (s *VisibilityService) CanJoin(ctx context.Context, event *entity.Event, viewer *entity.Profile) (bool, error) {
	ok, err := s.CanView(ctx, event, viewer.ID)
	if err != nil || !ok {
		return false, err
	}
	going, err := s.participations.CountGoing(ctx, event.ID)
	if err != nil {
		return false, err
	}
	participation, err := s.participations.Participation(ctx, event.ID, viewer.ID)
	if err != nil {
		return false, err
	}
	return canJoin(event, viewer, going, participation, s.now()), nil
}

// View returns the event as seen by viewer, or errorz.EventHidden.
func (s *VisibilityService) View(ctx context.Context, eventID string, viewer *entity.Profile) (dto.EventWithParticipation, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return dto.EventWithParticipation{}, err
	}
	hood, err := s.neighborhood(ctx, viewer.ID)
	if err != nil {
		return dto.EventWithParticipation{}, err
	}
	view, visible, err := s.describe(ctx, event, viewer, hood)
	if err != nil {
		return dto.EventWithParticipation{}, err
	}
	if !visible {
		return dto.EventWithParticipation{}, errorz.EventHidden
	}
	return view, nil
}

// Describe returns the event as seen by viewer without an access check.
func (s *VisibilityService) Describe(ctx context.Context, event *entity.Event, viewer *entity.Profile) (dto.EventWithParticipation, error) {
	hood, err := s.neighborhood(ctx, viewer.ID)
	if err != nil {
		return dto.EventWithParticipation{}, err
	}
	view, _, err := s.describe(ctx, event, viewer, hood)
	return view, err
}

// ListEvents returns a page of the events viewer may see.
func (s *VisibilityService) ListEvents(ctx context.Context, viewer *entity.Profile, q dto.EventQuery) (dto.EventList, error) {
	events, total, hasMore, err := s.events.List(ctx, viewer.ID, q)
	if err != nil {
		return dto.EventList{}, err
	}
	return s.describeMany(ctx, events, total, hasMore, viewer)
}

// ListUserEvents returns a page of the events viewer created or takes part in.
func (s *VisibilityService) ListUserEvents(ctx context.Context, viewer *entity.Profile, q dto.UserEventQuery) (dto.EventList, error) {
	events, total, hasMore, err := s.events.ListForUser(ctx, viewer.ID, q)
	if err != nil {
		return dto.EventList{}, err
	}
	return s.describeMany(ctx, events, total, hasMore, viewer)
}

func (s *VisibilityService) describeMany(ctx context.Context, events []entity.Event, total int64, hasMore bool, viewer *entity.Profile) (dto.EventList, error) {
	list := dto.EventList{
		Events:  make([]dto.EventWithParticipation, 0, len(events)),
		Total:   total,
		HasMore: hasMore,
	}
	if len(events) == 0 {
		return list, nil
	}

	hood, err := s.neighborhood(ctx, viewer.ID)
	if err != nil {
		return dto.EventList{}, err
	}
	for i := range events {
		view, _, err := s.describe(ctx, &events[i], viewer, hood)
		if err != nil {
			return dto.EventList{}, err
		}
		list.Events = append(list.Events, view)
	}
	return list, nil
}

// describe builds the viewer's view of event and reports whether the viewer may see it.
func (s *VisibilityService) describe(ctx context.Context, event *entity.Event, viewer *entity.Profile, hood neighborhood) (dto.EventWithParticipation, bool, error) {
	var view dto.EventWithParticipation

	going, err := s.participations.CountGoing(ctx, event.ID)
	if err != nil {
		return view, false, err
	}
	friendsGoing, err := s.participations.CountGoingAmong(ctx, event.ID, hood.direct)
	if err != nil {
		return view, false, err
	}
	fofGoing, err := s.participations.CountGoingAmong(ctx, event.ID, hood.friendsOfFriends)
	if err != nil {
		return view, false, err
	}
	participation, err := s.participations.Participation(ctx, event.ID, viewer.ID)
	if err != nil {
		return view, false, err
	}

	now := s.now()
	view = dto.EventWithParticipation{
		Event:                 dto.NewEventFromEntity(*event, going, now),
		FriendsGoing:          int(friendsGoing),
		FriendsOfFriendsGoing: int(fofGoing),
		ParticipationType:     entity.RoleViewer,
	}
	if participation != nil {
		view.ParticipationType = participation.Role
		view.ParticipateID = &participation.ID
		view.Attended, err = s.participations.Attended(ctx, participation.ID)
		if err != nil {
			return view, false, err
		}
	}

	visible := visibleTo(event, viewer.ID, friendsGoing)
	view.CanJoin = visible && canJoin(event, viewer, going, participation, now)
	return view, visible, nil
}

func visibleTo(event *entity.Event, viewerID string, friendsGoing int64) bool {
	if event.CreatorID == viewerID {
		return true
	}
	switch event.Visibility {
	case entity.VisibilityGlobal:
		return true
	case entity.VisibilityPrivate:
		return friendsGoing > 0
	}
	return false
}

// canJoin mirrors the checks ParticipationService.Join performs.
func canJoin(event *entity.Event, viewer *entity.Profile, going int64, participation *entity.Participation, now time.Time) bool {
	if event.CreatorID == viewer.ID || !event.RegistrationOpen(now) {
		return false
	}
	if participation != nil && participation.Role.IsGoing() {
		return true
	}
	return viewer.IsAdmin || !event.Full(going)
}
