package session

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// eventsChannel carries frames between server instances so a broadcast
// reaches rooms held by other processes.
const eventsChannel = "collabide:events"

// Envelope wraps a relayed frame. InstanceID lets a subscriber drop its
// own publications: the originating instance already delivered the
// frame locally with correct sender exclusion.
type Envelope struct {
	InstanceID string       `json:"instanceId"`
	RoomID     string       `json:"roomId"`
	Frame      models.Frame `json:"frame"`
}

// Broker relays room broadcasts across instances via Redis pub/sub. It
// is optional: without one, fan-out is in-process only.
type Broker struct {
	rdb        *redis.Client
	hub        *Hub
	log        *zap.Logger
	instanceID string
	cancel     context.CancelFunc
}

// NewBroker subscribes to the relay channel and starts delivering
// remote frames into local rooms. It returns once the subscription is
// established so frames published immediately afterwards are not lost.
func NewBroker(rdb *redis.Client, hub *Hub, log *zap.Logger) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Broker{
		rdb:        rdb,
		hub:        hub,
		log:        log,
		instanceID: uuid.NewString(),
		cancel:     cancel,
	}

	pubsub := rdb.Subscribe(ctx, eventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error("subscribe to relay channel", zap.Error(err))
	}
	go b.relay(ctx, pubsub)

	log.Info("broadcast broker started", zap.String("instance", b.instanceID))
	return b
}

func (b *Broker) InstanceID() string { return b.instanceID }

// Publish fans frame out to every other instance holding a room for
// roomID. Failures are logged and swallowed: local delivery already
// happened and the realtime path must not block.
func (b *Broker) Publish(roomID string, frame models.Frame) {
	payload, err := json.Marshal(Envelope{
		InstanceID: b.instanceID,
		RoomID:     roomID,
		Frame:      frame,
	})
	if err != nil {
		b.log.Error("encode relay envelope", zap.String("room", roomID), zap.Error(err))
		return
	}
	if err := b.rdb.Publish(context.Background(), eventsChannel, payload).Err(); err != nil {
		b.log.Error("publish relay envelope", zap.String("room", roomID), zap.Error(err))
	}
}

func (b *Broker) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("drop malformed relay envelope", zap.Error(err))
				continue
			}
			if env.InstanceID == b.instanceID {
				continue
			}
			if room, ok := b.hub.Get(env.RoomID); ok {
				room.BroadcastAll(env.Frame)
			}
		}
	}
}

func (b *Broker) Close() { b.cancel() }
