package routers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Praveenitis/CollabIDE/internal/api"
	"github.com/Praveenitis/CollabIDE/internal/engine"
	"github.com/Praveenitis/CollabIDE/internal/session"
	"github.com/Praveenitis/CollabIDE/internal/store"
)

func TestRouterEndpoints(t *testing.T) {
	st := store.NewMemoryStore()
	eng := engine.New(st, session.NewHub(), session.NewRegistry(), nil, zap.NewNop())
	h := api.NewHandlers(zap.NewNop(), st, eng)

	server := httptest.NewServer(New(h))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
