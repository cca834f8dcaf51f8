// Package engine is the event router: every realtime event lands here,
// runs a read-modify-write against the session store under a
// per-session lock, and fans the result out through the room fabric.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Praveenitis/CollabIDE/internal/models"
	"github.com/Praveenitis/CollabIDE/internal/session"
	"github.com/Praveenitis/CollabIDE/internal/store"
)

// eventPolicy controls what a failing handler tells the sender. Only
// join fails loudly; every other mutating event logs server-side and
// stays silent so the realtime path never blocks on error reporting.
type eventPolicy struct {
	reportsErrors  bool
	failureMessage string
}

var eventPolicies = map[string]eventPolicy{
	models.EventJoin:       {reportsErrors: true, failureMessage: "Failed to join session"},
	models.EventCodeChange: {reportsErrors: false},
	models.EventCursorMove: {reportsErrors: false},
	models.EventChat:       {reportsErrors: false},
	models.EventFileOp:     {reportsErrors: false},
}

type Engine struct {
	store    store.Store
	hub      *session.Hub
	registry *session.Registry
	broker   *session.Broker // nil when running single-instance
	log      *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(st store.Store, hub *session.Hub, reg *session.Registry, broker *session.Broker, log *zap.Logger) *Engine {
	return &Engine{
		store:    st,
		hub:      hub,
		registry: reg,
		broker:   broker,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations for one session id.
// Every read-modify-write cycle runs under it, so concurrent events for
// the same session apply in arrival order instead of overwriting each
// other's store writes.
func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// HandleJoin loads the session, registers the connection, and adds the
// user to the collaborator list (deduped by id). The joiner's first
// frame is always the full session snapshot; the rest of the room gets
// a presence delta.
func (e *Engine) HandleJoin(ctx context.Context, c *session.Client, req models.JoinRequest) {
	lock := e.lockFor(req.SessionID)
	lock.Lock()
	sess, err := e.store.Get(ctx, req.SessionID)
	if err != nil {
		lock.Unlock()
		e.fail(models.EventJoin, c, req.SessionID, err)
		return
	}

	room := e.hub.GetOrCreate(req.SessionID)
	room.Join(c)
	e.registry.Bind(c, session.ConnectionContext{SessionID: req.SessionID, User: req.User})

	if sess.AddCollaborator(req.User) {
		if err := e.store.Put(ctx, req.SessionID, sess); err != nil {
			e.log.Error("join: persist collaborator",
				zap.String("session", req.SessionID), zap.Error(err))
		}
	}
	lock.Unlock()

	c.Send(models.Frame{Type: models.EventSessionState, Data: sess})
	e.broadcast(req.SessionID, c, models.Frame{Type: models.EventUserJoined, Data: req.User})
}

// HandleCodeChange overwrites the file's content and the sender's
// cursor, creating the file entry lazily, then notifies everyone else.
func (e *Engine) HandleCodeChange(ctx context.Context, c *session.Client, req models.CodeChange) {
	cctx, ok := e.registry.Lookup(c)
	if !ok {
		return
	}

	lock := e.lockFor(req.SessionID)
	lock.Lock()
	sess, err := e.store.Get(ctx, req.SessionID)
	if err != nil {
		lock.Unlock()
		e.fail(models.EventCodeChange, c, req.SessionID, err)
		return
	}
	f := sess.TouchFile(req.FileID)
	f.Content = req.Content
	f.Cursors[cctx.User.ID] = req.Cursor
	err = e.store.Put(ctx, req.SessionID, sess)
	lock.Unlock()
	if err != nil {
		e.fail(models.EventCodeChange, c, req.SessionID, err)
		return
	}

	e.broadcast(req.SessionID, c, models.Frame{
		Type: models.EventCodeUpdated,
		Data: models.CodeUpdated{
			FileID:  req.FileID,
			Content: req.Content,
			Cursor:  models.UserCursor{UserID: cctx.User.ID, CursorPosition: req.Cursor},
		},
	})
}

// HandleCursorMove is broadcast-only. Cursor traffic is high-frequency
// and low value per update, so it never touches the store.
func (e *Engine) HandleCursorMove(c *session.Client, req models.CursorMove) {
	cctx, ok := e.registry.Lookup(c)
	if !ok {
		return
	}
	e.broadcast(req.SessionID, c, models.Frame{
		Type: models.EventCursorUpdated,
		Data: models.CursorUpdated{
			FileID: req.FileID,
			Cursor: models.UserCursor{UserID: cctx.User.ID, CursorPosition: req.Cursor},
		},
	})
}

// HandleChat appends a message, trims history to the last
// models.MaxMessages entries, and broadcasts to the whole room, sender
// included.
func (e *Engine) HandleChat(ctx context.Context, c *session.Client, req models.ChatSend) {
	cctx, ok := e.registry.Lookup(c)
	if !ok {
		return
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    cctx.User.ID,
		UserName:  cctx.User.Name,
		Message:   req.Message,
		Timestamp: time.Now().UTC(),
	}

	lock := e.lockFor(req.SessionID)
	lock.Lock()
	sess, err := e.store.Get(ctx, req.SessionID)
	if err != nil {
		lock.Unlock()
		e.fail(models.EventChat, c, req.SessionID, err)
		return
	}
	sess.AppendMessage(msg)
	err = e.store.Put(ctx, req.SessionID, sess)
	lock.Unlock()
	if err != nil {
		e.fail(models.EventChat, c, req.SessionID, err)
		return
	}

	e.broadcastAll(req.SessionID, models.Frame{Type: models.EventChat, Data: msg})
}

// HandleFileOperation applies create/delete/rename to the file tree and
// relays the operation to the rest of the room. The operation is
// relayed even when it was a no-op (e.g. rename of an absent file) so
// peers and the store stay in step with the original behavior.
func (e *Engine) HandleFileOperation(ctx context.Context, c *session.Client, req models.FileOperation) {
	if _, ok := e.registry.Lookup(c); !ok {
		return
	}

	lock := e.lockFor(req.SessionID)
	lock.Lock()
	sess, err := e.store.Get(ctx, req.SessionID)
	if err != nil {
		lock.Unlock()
		e.fail(models.EventFileOp, c, req.SessionID, err)
		return
	}
	sess.ApplyFileOperation(req.Operation, req.FileData)
	err = e.store.Put(ctx, req.SessionID, sess)
	lock.Unlock()
	if err != nil {
		e.fail(models.EventFileOp, c, req.SessionID, err)
		return
	}

	e.broadcast(req.SessionID, c, models.Frame{
		Type: models.EventFileOp,
		Data: models.FileOpBroadcast{Operation: req.Operation, FileData: req.FileData},
	})
}

// HandleDisconnect tears down a joined connection: the user leaves the
// collaborator list, the room drops the connection, and the rest of the
// room hears about it. Unbind is once-only, so a duplicate disconnect
// for the same connection is a no-op.
func (e *Engine) HandleDisconnect(ctx context.Context, c *session.Client) {
	cctx, ok := e.registry.Unbind(c)
	if !ok {
		return
	}

	lock := e.lockFor(cctx.SessionID)
	lock.Lock()
	sess, err := e.store.Get(ctx, cctx.SessionID)
	switch {
	case err == nil:
		if sess.RemoveCollaborator(cctx.User.ID) {
			if perr := e.store.Put(ctx, cctx.SessionID, sess); perr != nil {
				e.log.Error("disconnect: persist departure",
					zap.String("session", cctx.SessionID), zap.Error(perr))
			}
		}
	case !errors.Is(err, store.ErrNotFound):
		e.log.Error("disconnect: load session",
			zap.String("session", cctx.SessionID), zap.Error(err))
	}
	lock.Unlock()

	if room, ok := e.hub.Get(cctx.SessionID); ok {
		if left := room.Leave(c); left == 0 {
			e.hub.Delete(cctx.SessionID)
		}
	}
	e.broadcast(cctx.SessionID, c, models.Frame{Type: models.EventUserLeft, Data: cctx.User})
}

// fail applies the per-event error policy.
func (e *Engine) fail(event string, c *session.Client, sessionID string, err error) {
	policy := eventPolicies[event]
	if errors.Is(err, store.ErrNotFound) {
		if policy.reportsErrors {
			c.Send(models.Frame{Type: models.EventError, Data: models.ErrorPayload{Message: "Session not found"}})
		}
		return
	}
	e.log.Error("event handler failed",
		zap.String("event", event), zap.String("session", sessionID), zap.Error(err))
	if policy.reportsErrors {
		c.Send(models.Frame{Type: models.EventError, Data: models.ErrorPayload{Message: policy.failureMessage}})
	}
}

// broadcast sends frame to every other member of the local room and, if
// a broker is attached, to every peer instance's room.
func (e *Engine) broadcast(sessionID string, sender *session.Client, frame models.Frame) {
	if room, ok := e.hub.Get(sessionID); ok {
		room.Broadcast(sender, frame)
	}
	if e.broker != nil {
		e.broker.Publish(sessionID, frame)
	}
}

func (e *Engine) broadcastAll(sessionID string, frame models.Frame) {
	if room, ok := e.hub.Get(sessionID); ok {
		room.BroadcastAll(frame)
	}
	if e.broker != nil {
		e.broker.Publish(sessionID, frame)
	}
}
