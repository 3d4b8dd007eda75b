package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

const (
	topSkillsKey        = "profilehub:skills:top:v1"
	topSkillsVersionKey = "profilehub:skills:top:version"
)

// SkillsCache holds the last computed top-skills histogram. Any user write
// invalidates it and bumps its version. A fill reads Version before querying
// the store and passes it to Set, which drops the write when an invalidation
// happened in between.
type SkillsCache interface {
	Get(ctx context.Context) ([]user.SkillCount, bool, error)
	Version(ctx context.Context) (int64, error)
	Set(ctx context.Context, version int64, skills []user.SkillCount) error
	Invalidate(ctx context.Context) error
}

type MemorySkillsCache struct {
	mu      sync.Mutex
	version int64
	c       *TTL[[]user.SkillCount]
}

func NewMemorySkillsCache(ttl time.Duration) *MemorySkillsCache {
	return &MemorySkillsCache{c: NewTTL[[]user.SkillCount](ttl)}
}

func (m *MemorySkillsCache) Get(ctx context.Context) ([]user.SkillCount, bool, error) {
	v, ok := m.c.Get(topSkillsKey)
	if !ok {
		return nil, false, nil
	}
	return append([]user.SkillCount(nil), v...), true, nil
}

func (m *MemorySkillsCache) Version(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

func (m *MemorySkillsCache) Set(ctx context.Context, version int64, skills []user.SkillCount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if version != m.version {
		return nil
	}
	m.c.Set(topSkillsKey, append([]user.SkillCount(nil), skills...))
	return nil
}

func (m *MemorySkillsCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	m.c.Delete(topSkillsKey)
	return nil
}

// setIfVersion writes the histogram only while the version key still holds
// the value the caller read before querying the store.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisSkillsCache shares the histogram between API replicas.
type RedisSkillsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSkillsCache(rdb *redis.Client, ttl time.Duration) *RedisSkillsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisSkillsCache{rdb: rdb, ttl: ttl}
}

func (r *RedisSkillsCache) Get(ctx context.Context) ([]user.SkillCount, bool, error) {
	raw, err := r.rdb.Get(ctx, topSkillsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out []user.SkillCount
	if err := json.Unmarshal(raw, &out); err != nil {
		// treat a corrupt entry as a miss, it is overwritten on the next Set
		return nil, false, nil
	}
	return out, true, nil
}

func (r *RedisSkillsCache) Version(ctx context.Context) (int64, error) {
	v, err := r.rdb.Get(ctx, topSkillsVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *RedisSkillsCache) Set(ctx context.Context, version int64, skills []user.SkillCount) error {
	b, err := json.Marshal(skills)
	if err != nil {
		return err
	}

	return setIfVersion.Run(ctx, r.rdb,
		[]string{topSkillsVersionKey, topSkillsKey},
		version, b, r.ttl.Milliseconds(),
	).Err()
}

// Invalidate bumps the version and drops the histogram in one transaction.
func (r *RedisSkillsCache) Invalidate(ctx context.Context) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, topSkillsVersionKey)
		pipe.Del(ctx, topSkillsKey)
		return nil
	})
	return err
}
