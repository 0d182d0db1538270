package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores analysis results under prefix with a fixed TTL.
// A zero TTL keeps entries forever.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, prefix string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ctx:    context.Background(),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisCache) Get(key string) (string, bool) {
	val, err := r.client.Get(r.ctx, r.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(key string, value string) error {
	return r.client.Set(r.ctx, r.prefix+key, value, r.ttl).Err()
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
