package registry

import (
	"context"
	"time"
)

// Cache stores raw successful registry response bodies. The SQLite store
// implements it; a nil Cache disables caching.
type Cache interface {
	GetRegistryResponse(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool, error)
	PutRegistryResponse(ctx context.Context, key string, body []byte) error
}
