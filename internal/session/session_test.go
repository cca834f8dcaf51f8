package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

type frameCapture struct {
	mu     sync.Mutex
	frames []models.Frame
}

func newFrameCapture() *frameCapture { return &frameCapture{} }

func (c *frameCapture) hook(frame models.Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
}

func (c *frameCapture) list() []models.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestClientSendWithHook(t *testing.T) {
	client := NewClient(nil)
	capture := newFrameCapture()
	client.SetSendHook(capture.hook)

	client.Send(models.Frame{Type: "ping"})

	got := capture.list()
	if len(got) != 1 || got[0].Type != "ping" {
		t.Fatalf("expected frame captured, got %#v", got)
	}
}

func TestClientSendWithoutConnDoesNotPanic(t *testing.T) {
	client := NewClient(nil)
	client.Send(models.Frame{Type: "noop"})
}

func TestClientSendWritesToConn(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan models.Frame, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err == nil {
			received <- frame
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	client := NewClient(conn)
	client.Send(models.Frame{Type: "ping"})

	select {
	case frame := <-received:
		if frame.Type != "ping" {
			t.Fatalf("unexpected frame: %#v", frame)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected frame to be received")
	}
}

func TestRoomJoinLeaveCount(t *testing.T) {
	room := NewRoom("room")
	if count := room.ClientCount(); count != 0 {
		t.Fatalf("expected empty room, got %d", count)
	}

	c1 := NewClient(nil)
	c2 := NewClient(nil)
	room.Join(c1)
	room.Join(c2)
	if count := room.ClientCount(); count != 2 {
		t.Fatalf("expected 2 clients, got %d", count)
	}

	if left := room.Leave(c1); left != 1 {
		t.Fatalf("expected 1 client after leave, got %d", left)
	}
	if left := room.Leave(c2); left != 0 {
		t.Fatalf("expected empty room, got %d", left)
	}
}

func TestRoomBroadcastExcludesSender(t *testing.T) {
	room := NewRoom("r")
	frame := models.Frame{Type: "chat-message", Data: "hello"}

	c1 := NewClient(nil)
	cap1 := newFrameCapture()
	c1.SetSendHook(cap1.hook)
	c2 := NewClient(nil)
	cap2 := newFrameCapture()
	c2.SetSendHook(cap2.hook)
	sender := NewClient(nil)
	sender.SetSendHook(func(models.Frame) { t.Fatal("sender should not receive broadcast") })

	room.Join(c1)
	room.Join(c2)
	room.Join(sender)

	room.Broadcast(sender, frame)

	if got := cap1.list(); len(got) != 1 || got[0].Type != "chat-message" {
		t.Fatalf("client1 missing frame: %#v", got)
	}
	if got := cap2.list(); len(got) != 1 || got[0].Type != "chat-message" {
		t.Fatalf("client2 missing frame: %#v", got)
	}
}

func TestRoomBroadcastAll(t *testing.T) {
	room := NewRoom("r")

	c1 := NewClient(nil)
	cap1 := newFrameCapture()
	c1.SetSendHook(cap1.hook)
	c2 := NewClient(nil)
	cap2 := newFrameCapture()
	c2.SetSendHook(cap2.hook)

	room.Join(c1)
	room.Join(c2)

	room.BroadcastAll(models.Frame{Type: "ping"})

	if len(cap1.list()) != 1 || len(cap2.list()) != 1 {
		t.Fatalf("expected broadcast to all clients")
	}
}

func TestHubLifecycle(t *testing.T) {
	hub := NewHub()
	roomA := hub.GetOrCreate("a")
	roomB := hub.GetOrCreate("a")
	if roomA != roomB {
		t.Fatalf("expected same room instance")
	}

	if _, ok := hub.Get("missing"); ok {
		t.Fatalf("expected missing room")
	}

	hub.Delete("a")
	if _, ok := hub.Get("a"); ok {
		t.Fatalf("expected room to be deleted")
	}
}

func TestRegistryBindLookupUnbind(t *testing.T) {
	reg := NewRegistry()
	client := NewClient(nil)

	if _, ok := reg.Lookup(client); ok {
		t.Fatalf("expected no context before bind")
	}

	ctx := ConnectionContext{SessionID: "s1", User: models.User{ID: "u1", Name: "Alice"}}
	reg.Bind(client, ctx)

	got, ok := reg.Lookup(client)
	if !ok || got.SessionID != "s1" || got.User.ID != "u1" {
		t.Fatalf("unexpected context: %#v ok=%v", got, ok)
	}

	got, ok = reg.Unbind(client)
	if !ok || got.User.ID != "u1" {
		t.Fatalf("expected unbind to return context, got %#v ok=%v", got, ok)
	}
	if _, ok := reg.Unbind(client); ok {
		t.Fatalf("expected second unbind to report absent")
	}
	if _, ok := reg.Lookup(client); ok {
		t.Fatalf("expected context gone after unbind")
	}
}
