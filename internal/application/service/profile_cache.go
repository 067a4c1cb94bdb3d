package service

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the slug has no cached view.
var ErrCacheMiss = errors.New("cache miss")

// ProfileCache holds the assembled public profile view per slug. The cache
// is best effort: every method failure is safe to ignore, the view is always
// rebuildable from Postgres.
type ProfileCache interface {
	Get(ctx context.Context, slug string) ([]byte, error)
	Set(ctx context.Context, slug string, payload []byte) error
	Invalidate(ctx context.Context, slug string) error
}
