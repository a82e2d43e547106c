package cart

import (
	"context"
	"time"
)

// Repository stores cart sessions.
type Repository interface {
	Save(ctx context.Context, c *Cart, ttl time.Duration) error
	// Get returns nil, nil for unknown or expired sessions.
	Get(ctx context.Context, id string) (*Cart, error)
	// Update loads the cart, applies fn and writes it back atomically.
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*Cart) error) (*Cart, error)
	Delete(ctx context.Context, id string) error
}
