package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOpenWithoutAddrUsesMemory(t *testing.T) {
	st := Open("", zap.NewNop())
	assert.IsType(t, &MemoryStore{}, st)
}

func TestOpenFallsBackWhenRedisUnreachable(t *testing.T) {
	st := Open("localhost:0", zap.NewNop())
	assert.IsType(t, &MemoryStore{}, st)
}

func TestOpenConnectsToRedis(t *testing.T) {
	mr, _ := setupTestRedis(t)
	st := Open(mr.Addr(), zap.NewNop())
	assert.IsType(t, &RedisStore{}, st)
}
