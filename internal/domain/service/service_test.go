package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/logger"
)

var testTags = []string{"Лекция", "Музей", "Спорт", "Музыка", "Природа"}

type testEnv struct {
	db            *memDB
	cache         *memCache
	friends       *FriendService
	invitations   *InvitationService
	profiles      *ProfileService
	events        *EventService
	participation *ParticipationService
	visibility    *VisibilityService
	now           time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newMemDB()
	cache := newMemCache()
	log := logger.Nop()

	env := &testEnv{
		db:    db,
		cache: cache,
		now:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.friends = NewFriendService(memFriends{db}, cache, log)
	env.invitations = NewInvitationService(memInvitations{db}, memProfiles{db}, env.friends, log)
	env.profiles = NewProfileService(memProfiles{db}, memInvitations{db}, env.friends, log)
	env.events = NewEventService(memEvents{db}, EventOptions{Tags: testTags, DefaultLimit: 20, MaxLimit: 100}, log)
	env.participation = NewParticipationService(memParticipations{db}, memScans{db}, memEvents{db}, log)
	env.visibility = NewVisibilityService(env.friends, env.events, env.participation)

	clock := func() time.Time { return env.now }
	env.events.now = clock
	env.participation.now = clock
	env.visibility.now = clock
	return env
}

// profile stores a bare profile without going through invitations.
func (e *testEnv) profile(t *testing.T, name string) *entity.Profile {
	t.Helper()
	p, err := memProfiles{e.db}.Create(context.Background(), &entity.Profile{
		ID:         uuid.NewString(),
		ExternalID: int64(len(e.db.profiles) + 1000),
		FirstName:  name,
		LastName:   "Test",
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) admin(t *testing.T, name string) *entity.Profile {
	t.Helper()
	p := e.profile(t, name)
	p.IsAdmin = true
	_, err := memProfiles{e.db}.Update(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (e *testEnv) befriend(t *testing.T, a, b *entity.Profile) {
	t.Helper()
	require.NoError(t, e.friends.CreateEdge(context.Background(), a.ID, b.ID))
}

type eventOption func(in *dto.EventInput)

func withCapacity(n int) eventOption {
	return func(in *dto.EventInput) { in.MaxParticipants = dto.Value(n) }
}

func private() eventOption {
	return func(in *dto.EventInput) {
		v := entity.VisibilityPrivate
		in.Visibility = &v
	}
}

func withTags(tags ...string) eventOption {
	return func(in *dto.EventInput) { in.Tags = &tags }
}

func withRegistration(start, end *time.Time) eventOption {
	return func(in *dto.EventInput) {
		in.RegistrationStart = dto.Nullable[time.Time]{Set: true, Value: start}
		in.RegistrationEnd = dto.Nullable[time.Time]{Set: true, Value: end}
	}
}

func (e *testEnv) event(t *testing.T, creator *entity.Profile, opts ...eventOption) *entity.Event {
	t.Helper()
	title, body := "Пробежка", "Утренняя пробежка в парке"
	day := dto.NewDate(e.now.AddDate(0, 0, 7))
	in := dto.EventInput{
		Title:     &title,
		Body:      &body,
		StartDate: &day,
		EndDate:   &day,
	}
	for _, opt := range opts {
		opt(&in)
	}
	event, err := e.events.Create(context.Background(), creator.ID, in)
	require.NoError(t, err)
	return event
}
