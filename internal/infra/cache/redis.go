package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "moodbox:"

// RedisConfig represents redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a redis client and verifies it with PING.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", cfg.Addr)
	}
	return client, nil
}

// Redis is a TTL store backed by redis. Keys are namespaced by store name,
// so several stores can share one client.
type Redis struct {
	client *redis.Client
	name   string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis creates a redis-backed store.
func NewRedis(client *redis.Client, name string, ttl time.Duration) *Redis {
	return &Redis{client: client, name: name, ttl: ttl}
}

func (r *Redis) key(k string) string {
	return keyPrefix + r.name + ":" + k
}

func (r *Redis) Name() string {
	return r.name
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		r.misses.Add(1)
		return nil, false, errors.Wrap(err, "redis get")
	}
	r.hits.Add(1)
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrap(r.client.Set(ctx, r.key(key), value, r.ttl).Err(), "redis set")
}

func (r *Redis) Flush(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.key("*"), 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 200 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return errors.Wrap(err, "redis del")
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "redis scan")
	}
	if len(batch) > 0 {
		return errors.Wrap(r.client.Del(ctx, batch...).Err(), "redis del")
	}
	return nil
}

func (r *Redis) Len(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.key("*"), 200).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, errors.Wrap(iter.Err(), "redis scan")
}

func (r *Redis) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}
