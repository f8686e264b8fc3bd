package friends

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listPrefix       = "friends:"
	generationPrefix = "friends:gen:"
)

// setIfCurrent stores a list only while the profile generation still equals
// the one observed before the database read. Clear bumps the generation, so a
// list read before a concurrent friendship change is dropped.
var setIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[2] then
	return 0
end
if ARGV[3] == "0" then
	redis.call("SET", KEYS[1], ARGV[1])
else
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
end
return 1
`)

// Storage caches the direct friend ids of a profile.
type Storage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStorage(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{
		redis: client,
		ttl:   ttl,
	}
}

// Get returns the cached friend ids of id. ok is false on a cache miss, and
// generation must then be passed to Set together with the freshly read list.
func (s *Storage) Get(ctx context.Context, id string) (ids []string, generation int64, ok bool, err error) {
	values, err := s.redis.MGet(ctx, listPrefix+id, generationPrefix+id).Result()
	if err != nil {
		return nil, 0, false, err
	}

	if raw, isString := values[1].(string); isString {
		if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, false, err
		}
	}

	data, isString := values[0].(string)
	if !isString {
		return nil, generation, false, nil
	}
	if err = json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, generation, false, err
	}
	return ids, generation, true, nil
}

// Set caches ids unless the friendships of id changed after generation was read.
func (s *Storage) Set(ctx context.Context, id string, ids []string, generation int64) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	keys := []string{listPrefix + id, generationPrefix + id}
	return setIfCurrent.Run(ctx, s.redis, keys, data, generation, s.ttl.Milliseconds()).Err()
}

// Clear drops the cached lists of every given profile and bumps their generations.
func (s *Storage) Clear(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, generationPrefix+id)
			pipe.Del(ctx, listPrefix+id)
		}
		return nil
	})
	return err
}
