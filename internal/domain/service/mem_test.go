package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
)

// memDB is an in-memory stand-in for the postgres storages.
type memDB struct {
	mu             sync.Mutex
	profiles       map[string]*entity.Profile
	edges          map[[2]string]struct{}
	invitations    map[string]*entity.Invitation
	events         map[string]*entity.Event
	participations map[string]*entity.Participation
	scans          []entity.AttendanceScan
	clock          time.Time
	neighborCalls  int
	// afterNeighbors runs once a neighbor scan has been taken, outside the lock.
	afterNeighbors func(id string)
}

func newMemDB() *memDB {
	return &memDB{
		profiles:       make(map[string]*entity.Profile),
		edges:          make(map[[2]string]struct{}),
		invitations:    make(map[string]*entity.Invitation),
		events:         make(map[string]*entity.Event),
		participations: make(map[string]*entity.Participation),
		clock:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing creation times.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func edgeKey(a, b string) [2]string {
	edge := entity.NewFriendEdge(a, b)
	return [2]string{edge.User1, edge.User2}
}

type memFriends struct{ *memDB }

func (s memFriends) Create(_ context.Context, edge entity.FriendEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{edge.User1, edge.User2}
	if _, ok := s.edges[key]; ok {
		return errorz.AlreadyFriends
	}
	s.edges[key] = struct{}{}
	return nil
}

func (s memFriends) Delete(_ context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey(a, b)
	if _, ok := s.edges[key]; !ok {
		return errorz.EdgeNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s memFriends) Exists(_ context.Context, a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edges[edgeKey(a, b)]
	return ok, nil
}

func (s memFriends) Neighbors(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	s.neighborCalls++
	var ids []string
	for key := range s.edges {
		switch id {
		case key[0]:
			ids = append(ids, key[1])
		case key[1]:
			ids = append(ids, key[0])
		}
	}
	hook := s.afterNeighbors
	s.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return ids, nil
}

type memProfiles struct{ *memDB }

func (s memProfiles) Create(_ context.Context, profile *entity.Profile) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(profile)
}

func (s memProfiles) create(profile *entity.Profile) (*entity.Profile, error) {
	for _, p := range s.profiles {
		if p.ExternalID == profile.ExternalID {
			return nil, errorz.ProfileExists
		}
	}
	profile.CreatedAt = s.tick()
	stored := *profile
	s.profiles[profile.ID] = &stored
	return profile, nil
}

func (s memProfiles) CreateInvited(_ context.Context, profile *entity.Profile, edge entity.FriendEdge) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{edge.User1, edge.User2}
	if _, ok := s.edges[key]; ok {
		return nil, errorz.AlreadyFriends
	}
	profile, err := s.create(profile)
	if err != nil {
		return nil, err
	}
	s.edges[key] = struct{}{}
	return profile, nil
}

func (s memProfiles) Get(_ context.Context, id string) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, errorz.ProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (s memProfiles) GetByExternalID(_ context.Context, externalID int64) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ExternalID == externalID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, errorz.ProfileNotFound
}

func (s memProfiles) GetMany(_ context.Context, ids []string) ([]entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []entity.Profile{}
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s memProfiles) GetInvitedBy(_ context.Context, id string) ([]entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []entity.Profile{}
	for _, p := range s.profiles {
		if p.InvitedBy != nil && *p.InvitedBy == id {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (s memProfiles) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.profiles)), nil
}

func (s memProfiles) Update(_ context.Context, profile *entity.Profile) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *profile
	s.profiles[profile.ID] = &stored
	return profile, nil
}

// Delete cascades the way the foreign keys do.
func (s memProfiles) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return errorz.ProfileNotFound
	}
	delete(s.profiles, id)
	for key := range s.edges {
		if key[0] == id || key[1] == id {
			delete(s.edges, key)
		}
	}
	for pid, p := range s.participations {
		if p.UserID == id {
			delete(s.participations, pid)
		}
	}
	for eid, e := range s.events {
		if e.CreatorID == id {
			delete(s.events, eid)
		}
	}
	return nil
}

type memInvitations struct{ *memDB }

func (s memInvitations) GetOrCreate(_ context.Context, ownerID string) (*entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invitations {
		if inv.OwnerID == ownerID {
			copied := *inv
			return &copied, nil
		}
	}
	inv := &entity.Invitation{ID: uuid.NewString(), OwnerID: ownerID, CreatedAt: s.tick()}
	s.invitations[inv.ID] = inv
	copied := *inv
	return &copied, nil
}

func (s memInvitations) Get(_ context.Context, id string) (*entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return nil, errorz.InvalidInvitation
	}
	copied := *inv
	return &copied, nil
}

type memEvents struct{ *memDB }

func (s memEvents) Create(_ context.Context, event *entity.Event) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.CreatedAt = s.tick()
	stored := *event
	s.events[event.ID] = &stored
	id := uuid.NewString()
	s.participations[id] = &entity.Participation{ID: id, EventID: event.ID, UserID: event.CreatorID, Role: entity.RoleCreator}
	return event, nil
}

func (s memEvents) Get(_ context.Context, id string) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, errorz.EventNotFound
	}
	copied := *e
	return &copied, nil
}

func (s memEvents) Update(_ context.Context, event *entity.Event) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *event
	s.events[event.ID] = &stored
	return event, nil
}

func (s memEvents) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return errorz.EventNotFound
	}
	delete(s.events, id)
	for pid, p := range s.participations {
		if p.EventID == id {
			delete(s.participations, pid)
		}
	}
	return nil
}

func (s memEvents) EndPast(_ context.Context, today time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.Status == entity.StatusActive && e.IsPast(today) {
			e.Status = entity.StatusEnded
			n++
		}
	}
	return n, nil
}

// List ignores visibility; it is enforced in SQL and covered by the storage tests.
func (s memEvents) List(_ context.Context, _ string, page dto.EventQuery) ([]entity.Event, int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []entity.Event
	for _, e := range s.events {
		if len(page.Tags) > 0 && !slices.ContainsFunc(page.Tags, func(tag string) bool { return slices.Contains(e.Tags, tag) }) {
			continue
		}
		matched = append(matched, *e)
	}
	return s.page(matched, page.LastSeenID, page.Limit)
}

func (s memEvents) ListForUser(_ context.Context, userID string, page dto.UserEventQuery, today time.Time) ([]entity.Event, int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []entity.Event
	for _, e := range s.events {
		involved := false
		for _, p := range s.participations {
			if p.EventID == e.ID && p.UserID == userID {
				involved = true
			}
		}
		if !involved {
			continue
		}
		if page.Filter == entity.EventsPast && !e.EndDate.Before(today) {
			continue
		}
		if page.Filter == entity.EventsActual && e.EndDate.Before(today) {
			continue
		}
		matched = append(matched, *e)
	}
	return s.page(matched, page.LastSeenID, page.Limit)
}

func (s memEvents) page(events []entity.Event, lastSeenID string, limit int) ([]entity.Event, int64, bool, error) {
	total := int64(len(events))
	if anchor, ok := s.events[lastSeenID]; ok {
		events = slices.DeleteFunc(events, func(e entity.Event) bool { return !e.CreatedAt.Before(anchor.CreatedAt) })
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}
	return events, total, hasMore, nil
}

type memParticipations struct{ *memDB }

func (s memParticipations) Upsert(
	_ context.Context,
	eventID, userID string,
	role entity.Role,
	check func(event *entity.Event, going int64, existing *entity.Participation) error,
) (*entity.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, errorz.EventNotFound
	}
	going := s.countGoing(eventID, nil)
	existing := s.find(eventID, userID)

	var checked *entity.Participation
	if existing != nil {
		copied := *existing
		checked = &copied
	}
	eventCopy := *event
	if err := check(&eventCopy, going, checked); err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Role = role
		copied := *existing
		return &copied, nil
	}
	p := &entity.Participation{ID: uuid.NewString(), EventID: eventID, UserID: userID, Role: role, CreatedAt: s.tick()}
	s.participations[p.ID] = p
	copied := *p
	return &copied, nil
}

func (s memParticipations) find(eventID, userID string) *entity.Participation {
	for _, p := range s.participations {
		if p.EventID == eventID && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s memParticipations) countGoing(eventID string, among []string) int64 {
	var count int64
	for _, p := range s.participations {
		if p.EventID != eventID || !p.Role.IsGoing() {
			continue
		}
		if among != nil && !slices.Contains(among, p.UserID) {
			continue
		}
		count++
	}
	return count
}

func (s memParticipations) Get(_ context.Context, eventID, userID string) (*entity.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(eventID, userID)
	if p == nil {
		return nil, errorz.NotParticipating
	}
	copied := *p
	return &copied, nil
}

func (s memParticipations) GetByID(_ context.Context, id string) (*entity.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participations[id]
	if !ok {
		return nil, errorz.ParticipationNotFound
	}
	copied := *p
	return &copied, nil
}

func (s memParticipations) Delete(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(eventID, userID)
	if p == nil {
		return errorz.NotParticipating
	}
	delete(s.participations, p.ID)
	return nil
}

func (s memParticipations) CountGoing(_ context.Context, eventID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countGoing(eventID, nil), nil
}

func (s memParticipations) CountGoingAmong(_ context.Context, eventID string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countGoing(eventID, userIDs), nil
}

type memScans struct{ *memDB }

func (s memScans) Create(_ context.Context, scan *entity.AttendanceScan) (*entity.AttendanceScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan.CreatedAt = s.tick()
	s.scans = append(s.scans, *scan)
	return scan, nil
}

func (s memScans) CountByParticipation(_ context.Context, participationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, scan := range s.scans {
		if scan.ParticipationID == participationID {
			count++
		}
	}
	return count, nil
}

// memCache is a FriendCache that can be told to fail.
type memCache struct {
	mu          sync.Mutex
	lists       map[string][]string
	generations map[string]int64
	failing     bool
}

var errCacheDown = errors.New("cache down")

func newMemCache() *memCache {
	return &memCache{
		lists:       make(map[string][]string),
		generations: make(map[string]int64),
	}
}

func (c *memCache) Get(_ context.Context, id string) ([]string, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, 0, false, errCacheDown
	}
	ids, ok := c.lists[id]
	return ids, c.generations[id], ok, nil
}

func (c *memCache) Set(_ context.Context, id string, ids []string, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	if c.generations[id] != generation {
		return nil
	}
	c.lists[id] = slices.Clone(ids)
	return nil
}

func (c *memCache) Clear(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	for _, id := range ids {
		delete(c.lists, id)
		c.generations[id]++
	}
	return nil
}
