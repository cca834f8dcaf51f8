package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// sessionsKey is the single hash holding every session: field = session
// id, value = the full JSON-serialized record.
const sessionsKey = "sessions"

const opTimeout = 5 * time.Second

// RedisStore persists sessions in one Redis hash. Records are retained
// indefinitely: hash fields cannot carry individual TTLs, so eviction is
// left to the operator.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// Client exposes the underlying connection so the broadcast broker can
// share it for pub/sub.
func (s *RedisStore) Client() *redis.Client { return s.rdb }

func (s *RedisStore) GetAll(ctx context.Context) ([]*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := s.rdb.HGetAll(ctx, sessionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", sessionsKey, err)
	}
	out := make([]*models.Session, 0, len(raw))
	for id, payload := range raw {
		var sess models.Session
		if err := json.Unmarshal([]byte(payload), &sess); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", id, err)
		}
		out = append(out, &sess)
	}
	// HGetAll ordering is unspecified; list oldest first.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := s.rdb.HGet(ctx, sessionsKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", id, err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, sess *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if err := s.rdb.HSet(ctx, sessionsKey, id, payload).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", id, err)
	}
	return nil
}
