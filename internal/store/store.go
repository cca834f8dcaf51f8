package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// ErrNotFound is returned by Get when no session exists under the id.
var ErrNotFound = errors.New("session not found")

// Store is the persistence contract behind Session records.
// Implementations must be safe for concurrent use. The contract offers
// no atomicity across a Get/Put pair on the same id; callers that need
// an ordered read-modify-write serialize it themselves (see engine).
type Store interface {
	GetAll(ctx context.Context) ([]*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Put(ctx context.Context, id string, s *models.Session) error
}

const pingTimeout = 2 * time.Second

// Open selects the backend once at process start. An empty address or
// an unreachable Redis falls back to the in-memory store; the choice is
// never re-evaluated afterwards, so a Redis that comes up later is not
// picked up until restart.
func Open(addr string, log *zap.Logger) Store {
	if addr == "" {
		log.Info("no redis address configured, using in-memory session store")
		return NewMemoryStore()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, falling back to in-memory session store",
			zap.String("addr", addr), zap.Error(err))
		_ = rdb.Close()
		return NewMemoryStore()
	}
	log.Info("connected to redis session store", zap.String("addr", addr))
	return NewRedisStore(rdb)
}
