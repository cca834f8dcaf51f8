package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Praveenitis/CollabIDE/internal/engine"
	"github.com/Praveenitis/CollabIDE/internal/metrics"
	"github.com/Praveenitis/CollabIDE/internal/models"
	"github.com/Praveenitis/CollabIDE/internal/session"
	"github.com/Praveenitis/CollabIDE/internal/store"
	"github.com/Praveenitis/CollabIDE/internal/utils"
)

type Handlers struct {
	log    *zap.Logger
	store  store.Store
	engine *engine.Engine
}

func NewHandlers(log *zap.Logger, st store.Store, eng *engine.Engine) *Handlers {
	return &Handlers{log: log, store: st, engine: eng}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

/*** Session gateway: thin REST over the store ***/

func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.GetAll(r.Context())
	if err != nil {
		h.log.Error("list sessions", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch sessions"})
		return
	}
	utils.JSON(w, http.StatusOK, sessions)
}

func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	// An empty or malformed body just means defaults; creation only
	// fails on a store error.
	_ = json.NewDecoder(r.Body).Decode(&req)

	sess := models.NewSession(uuid.NewString(), req.Name, req.Description)
	if err := h.store.Put(r.Context(), sess.ID, sess); err != nil {
		h.log.Error("create session", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create session"})
		return
	}
	utils.JSON(w, http.StatusOK, sess)
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		return
	}
	if err != nil {
		h.log.Error("get session", zap.String("session", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch session"})
		return
	}
	utils.JSON(w, http.StatusOK, sess)
}

/*** Realtime endpoint: one WebSocket per participant ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(conn)
	metrics.ConnectionOpened()
	defer metrics.ConnectionClosed()
	defer h.engine.HandleDisconnect(context.Background(), client)

	for {
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		// Dispatched handlers run to completion; there is no
		// cancellation once an event is accepted, so the request
		// context is deliberately not threaded through.
		h.dispatch(context.Background(), client, frame)
	}
}

func (h *Handlers) dispatch(ctx context.Context, client *session.Client, frame models.Frame) {
	metrics.EventReceived(frame.Type)

	switch frame.Type {
	case models.EventJoin:
		var req models.JoinRequest
		decode(frame.Data, &req)
		h.engine.HandleJoin(ctx, client, req)

	case models.EventCodeChange:
		var req models.CodeChange
		decode(frame.Data, &req)
		h.engine.HandleCodeChange(ctx, client, req)

	case models.EventCursorMove:
		var req models.CursorMove
		decode(frame.Data, &req)
		h.engine.HandleCursorMove(client, req)

	case models.EventChat:
		var req models.ChatSend
		decode(frame.Data, &req)
		h.engine.HandleChat(ctx, client, req)

	case models.EventFileOp:
		var req models.FileOperation
		decode(frame.Data, &req)
		h.engine.HandleFileOperation(ctx, client, req)

	default:
		client.Send(models.Frame{Type: models.EventError, Data: models.ErrorPayload{Message: "unknown event type"}})
	}
}

// decode round-trips loosely-typed frame data into a concrete payload.
func decode(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }
