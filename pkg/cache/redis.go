package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisClient{Client: client}, nil
}

// Wrap adopts an already configured client without pinging it.
func Wrap(client *redis.Client) *RedisClient {
	return &RedisClient{Client: client}
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock sets key to value with the given ttl unless the key already exists.
func (r *RedisClient) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, key, value, ttl).Result()
}

// ReleaseLock removes the lock if value is still its owner token.
func (r *RedisClient) ReleaseLock(ctx context.Context, key, value string) error {
	return releaseScript.Run(ctx, r.Client, []string{key}, value).Err()
}

// DeleteByPattern removes every key matching pattern using SCAN.
func (r *RedisClient) DeleteByPattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := r.Client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
