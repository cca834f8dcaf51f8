package session

import (
	"sync"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// ConnectionContext binds a live connection to its session and user. It
// exists only while the connection is joined and is never persisted.
type ConnectionContext struct {
	SessionID string
	User      models.User
}

// Registry owns every ConnectionContext, keyed by connection. Handlers
// look contexts up here instead of hanging state off the transport.
type Registry struct {
	mu       sync.RWMutex
	contexts map[*Client]ConnectionContext
}

func NewRegistry() *Registry {
	return &Registry{contexts: make(map[*Client]ConnectionContext)}
}

func (r *Registry) Bind(c *Client, ctx ConnectionContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[c] = ctx
}

func (r *Registry) Lookup(c *Client) (ConnectionContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.contexts[c]
	return ctx, ok
}

// Unbind removes and returns the context for c. A second call for the
// same connection reports absent, which keeps disconnect idempotent.
func (r *Registry) Unbind(c *Client) (ConnectionContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, ok := r.contexts[c]
	if ok {
		delete(r.contexts, c)
	}
	return ctx, ok
}
