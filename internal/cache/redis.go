package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient builds a client with short timeouts; the cache is an
// optimisation and must never hold a request up for long.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

// Pinger adapts a redis client to the readiness check.
type Pinger struct {
	rdb *redis.Client
}

func NewPinger(rdb *redis.Client) Pinger {
	return Pinger{rdb: rdb}
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
