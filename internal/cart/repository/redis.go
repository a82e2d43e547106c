package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/cart"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "carritos:"
	maxTxAttempts = 5
)

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func key(id string) string { return keyPrefix + id }

func (r *RedisRepository) Save(ctx context.Context, c *cart.Cart, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return r.client.Set(ctx, key(c.ID), data, ttl).Err()
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*cart.Cart, error) {
	return get(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func get(ctx context.Context, cmd getter, id string) (*cart.Cart, error) {
	data, err := cmd.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", id, err)
	}
	if c.Lines == nil {
		c.Lines = []cart.Line{}
	}
	return &c, nil
}

// Update runs fn inside a WATCH transaction and retries when another
// writer touched the cart in between.
func (r *RedisRepository) Update(ctx context.Context, id string, ttl time.Duration, fn func(*cart.Cart) error) (*cart.Cart, error) {
	var result *cart.Cart

	txf := func(tx *redis.Tx) error {
		c, err := get(ctx, tx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return cart.ErrNotFound
		}
		if err := fn(c); err != nil {
			return err
		}

		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), data, ttl)
			return nil
		})
		if err == nil {
			result = c
		}
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := r.client.Watch(ctx, txf, key(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("cart %s: too many concurrent updates", id)
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, key(id)).Err()
}
