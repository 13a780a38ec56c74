// Package cache holds the byte-level TTL stores behind the market data
// cache layer.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store. A miss is reported as ok=false with a nil
// error; errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
