package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// setupTestRedis creates a miniredis instance and a redis client for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	st := NewRedisStore(rdb)

	sess := models.NewSession("s1", "Design Review", "")
	sess.TouchFile("f1").Content = "x=1"
	assert.NoError(t, st.Put(context.Background(), "s1", sess))

	// The persisted layout is one hash keyed by session id holding the
	// full JSON record.
	raw := mr.HGet("sessions", "s1")
	assert.NotEmpty(t, raw)
	var stored models.Session
	assert.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "Design Review", stored.Name)
	assert.Equal(t, "x=1", stored.Files["f1"].Content)

	got, err := st.Get(context.Background(), "s1")
	assert.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "x=1", got.Files["f1"].Content)
}

func TestRedisStoreGetMissing(t *testing.T) {
	_, rdb := setupTestRedis(t)
	st := NewRedisStore(rdb)

	_, err := st.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreGetAll(t *testing.T) {
	_, rdb := setupTestRedis(t)
	st := NewRedisStore(rdb)

	older := models.NewSession("old", "old", "")
	older.CreatedAt = time.Now().Add(-time.Hour).UTC()
	newer := models.NewSession("new", "new", "")

	assert.NoError(t, st.Put(context.Background(), "new", newer))
	assert.NoError(t, st.Put(context.Background(), "old", older))

	all, err := st.GetAll(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, all, 2) {
		assert.Equal(t, "old", all[0].ID)
		assert.Equal(t, "new", all[1].ID)
	}
}

func TestRedisStoreGetAllCorruptRecord(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	st := NewRedisStore(rdb)

	mr.HSet("sessions", "bad", "{not json")
	_, err := st.GetAll(context.Background())
	assert.Error(t, err)
}
