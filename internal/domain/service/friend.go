package service

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type FriendStorage interface {
	Create(ctx context.Context, edge entity.FriendEdge) error
	Delete(ctx context.Context, a, b string) error
	Exists(ctx context.Context, a, b string) (bool, error)
	Neighbors(ctx context.Context, id string) ([]string, error)
}

// FriendCache keeps adjacency lists between requests. It may be nil.
//
// Get reports a generation on a miss. Set must ignore a list whose
// generation was bumped by Clear in the meantime, so a list read from the
// database before a concurrent friendship change is never cached.
type FriendCache interface {
	Get(ctx context.Context, id string) (ids []string, generation int64, ok bool, err error)
	Set(ctx context.Context, id string, ids []string, generation int64) error
	Clear(ctx context.Context, ids ...string) error
}

type FriendService struct {
	storage FriendStorage
	cache   FriendCache
	logger  *types.Logger
}

func NewFriendService(storage FriendStorage, cache FriendCache, logger *types.Logger) *FriendService {
	return &FriendService{
		storage: storage,
		cache:   cache,
		logger:  logger,
	}
}

func (s *FriendService) CreateEdge(ctx context.Context, a, b string) error {
	if a == b {
		return errorz.SelfFriendship
	}
	if err := s.storage.Create(ctx, entity.NewFriendEdge(a, b)); err != nil {
		return err
	}
	s.Forget(ctx, a, b)
	s.logger.Infow("friendship created", "a", a, "b", b)
	return nil
}

// DeleteEdge removes the friendship between a and b. Either side may do it alone.
func (s *FriendService) DeleteEdge(ctx context.Context, a, b string) error {
	if _, err := uuid.Parse(b); err != nil || a == b {
		return errorz.EdgeNotFound
	}
	if err := s.storage.Delete(ctx, a, b); err != nil {
		return err
	}
	s.Forget(ctx, a, b)
	s.logger.Infow("friendship deleted", "a", a, "b", b)
	return nil
}

func (s *FriendService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	return s.storage.Exists(ctx, a, b)
}

// DirectFriends returns the sorted ids adjacent to id.
func (s *FriendService) DirectFriends(ctx context.Context, id string) ([]string, error) {
	ids, err := s.neighbors(ctx, id)
	if err != nil {
		return nil, err
	}
	result := slices.Clone(ids)
	slices.Sort(result)
	return result, nil
}

// FriendsOfFriends returns the sorted ids exactly two hops away from id:
// friends of direct friends, without the direct friends and without id itself.
func (s *FriendService) FriendsOfFriends(ctx context.Context, id string) ([]string, error) {
	direct, err := s.neighbors(ctx, id)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]struct{}, len(direct)+1)
	exclude[id] = struct{}{}
	for _, f := range direct {
		exclude[f] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, f := range direct {
		second, err := s.neighbors(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, ff := range second {
			if _, skip := exclude[ff]; !skip {
				seen[ff] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(seen))
	for ff := range seen {
		result = append(result, ff)
	}
	slices.Sort(result)
	return result, nil
}

// Forget drops cached adjacency of the given profiles.
func (s *FriendService) Forget(ctx context.Context, ids ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx, ids...); err != nil {
		s.logger.Warnw("failed to clear friends cache", "ids", ids, "error", err)
	}
}

// neighbors reads through the cache. Cache failures fall back to the database.
func (s *FriendService) neighbors(ctx context.Context, id string) ([]string, error) {
	var (
		generation int64
		cached     = s.cache != nil
	)
	if cached {
		ids, gen, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warnw("failed to read friends cache", "id", id, "error", err)
			cached = false
		}
		if ok {
			return ids, nil
		}
		generation = gen
	}

	ids, err := s.storage.Neighbors(ctx, id)
	if err != nil {
		return nil, err
	}

	if cached {
		if err = s.cache.Set(ctx, id, ids, generation); err != nil {
			s.logger.Warnw("failed to fill friends cache", "id", id, "error", err)
		}
	}
	return ids, nil
}
