package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scenewire/engine/internal/events"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketReceivesRecentEvents(t *testing.T) {
	events.Clear()
	for i := 0; i < 5; i++ {
		events.Emit("info", "variable.changed", "", map[string]interface{}{"i": i})
	}

	srv := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer srv.Close()

	conn := dialWS(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	for received := 0; received < 5; received++ {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read message %d: %v", received, err)
		}
		var e events.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			t.Fatalf("invalid event json: %v", err)
		}
		if e.Name != "variable.changed" {
			t.Errorf("expected 'variable.changed', got '%s'", e.Name)
		}
	}
}

func TestWebSocketReceivesLiveEvents(t *testing.T) {
	events.Clear()

	srv := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer srv.Close()

	baseline := events.SubscriberCount()
	conn := dialWS(t, srv)

	// Wait for the handler to subscribe before emitting.
	deadline := time.Now().Add(2 * time.Second)
	for events.SubscriberCount() <= baseline && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if events.SubscriberCount() <= baseline {
		t.Fatal("ws handler never subscribed")
	}

	events.Emit("info", "tween.completed", "", map[string]interface{}{"animation_id": "a1"})

	// The handler announces the connection on the same stream, so read
	// past lifecycle events until the emitted one arrives.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e events.Event
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read live event: %v", err)
		}
		if err := json.Unmarshal(msg, &e); err != nil {
			t.Fatalf("invalid event json: %v", err)
		}
		if e.Name == "tween.completed" {
			break
		}
	}
	if e.Fields["animation_id"] != "a1" {
		t.Errorf("fields lost: %v", e.Fields)
	}
}

func TestWebSocketEmitsClientLifecycleEvents(t *testing.T) {
	events.Clear()

	srv := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer srv.Close()

	hasEvent := func(name string) bool {
		for _, e := range events.RecentEvents(recentEventsCount) {
			if e.Name == name {
				return true
			}
		}
		return false
	}
	await := func(name string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for !hasEvent(name) && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if !hasEvent(name) {
			t.Fatalf("event %q never emitted", name)
		}
	}

	conn := dialWS(t, srv)
	await("client.connected")

	conn.Close()
	await("client.disconnected")
}
