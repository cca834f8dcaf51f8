package session

import (
	"sync"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// Room is the set of connections currently joined to one session id,
// used purely for broadcast addressing. The authoritative session state
// lives in the store, not here.
type Room struct {
	ID      string
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[*Client]struct{}),
	}
}

func (r *Room) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

// Leave removes c and returns the number of remaining members so the
// caller can tear the room down when it empties.
func (r *Room) Leave(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
	return len(r.clients)
}

func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Broadcast sends frame to every member except sender.
func (r *Room) Broadcast(sender *Client, frame models.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// BroadcastAll sends frame to every member, sender included.
func (r *Room) BroadcastAll(frame models.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		c.Send(frame)
	}
}
