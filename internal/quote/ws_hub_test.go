package quote

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/solvx/solvency-engine/internal/metrics"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// waitForClients blocks until the hub has registered n connections.
func waitForClients(t *testing.T, hub *WSHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		got := len(hub.clients)
		hub.mu.RUnlock()
		if got == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", got, n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandleWS_UpgradesBehindMetricsMiddleware(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	// The production handler sits behind the metrics middleware, whose
	// response wrapper must pass hijacking through for the upgrade.
	srv := httptest.NewServer(metrics.Middleware(http.HandlerFunc(hub.HandleWS)))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want 101", resp.StatusCode)
	}
	waitForClients(t, hub, 1)

	hub.Broadcast(WSMessage{Type: "quote_issued", QuoteID: "q-1", Kind: "reinsurance"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.QuoteID != "q-1" || msg.Kind != "reinsurance" {
		t.Errorf("message = %+v", msg)
	}
}

func TestHub_DropsDeadConnectionsDuringBroadcast(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	live, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial live: %v", err)
	}
	defer live.Close()

	dead, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial dead: %v", err)
	}
	waitForClients(t, hub, 2)
	dead.Close()

	// Broadcast until the failed write evicts the closed connection.
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.Broadcast(WSMessage{Type: "quote_issued", QuoteID: "q-churn"})
		hub.mu.RLock()
		remaining := len(hub.clients)
		hub.mu.RUnlock()
		if remaining == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want 1", remaining)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The surviving client still receives events.
	hub.Broadcast(WSMessage{Type: "quote_issued", QuoteID: "q-after"})
	live.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg WSMessage
		if err := live.ReadJSON(&msg); err != nil {
			t.Fatalf("read after eviction: %v", err)
		}
		if msg.QuoteID == "q-after" {
			return
		}
	}
}
