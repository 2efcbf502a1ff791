package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
)

type progressEvent struct {
	Type string            `json:"type"`
	Data analysis.Progress `json:"data"`
}

// startHub runs a hub behind a test server and returns its ws:// URL.
func startHub(t *testing.T, cfg HubConfig) (*Hub, string) {
	t.Helper()

	hub := NewHub(cfg)
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readProgress(t *testing.T, conn *websocket.Conn) progressEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var ev progressEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		t.Fatalf("Failed to unmarshal %q: %v", message, err)
	}
	return ev
}

func TestHub_BroadcastAfterStop(t *testing.T) {
	hub := NewHub(HubConfig{})
	go hub.Run()

	event := Event{Type: EventAnalysisProgress, Data: analysis.Progress{JobID: "job-1"}}
	if !hub.BroadcastEvent(event) {
		t.Error("BroadcastEvent returned false on a running hub")
	}

	hub.Stop()
	deadline := time.Now().Add(time.Second)
	for !hub.IsStopped() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if hub.BroadcastEvent(event) {
		t.Error("BroadcastEvent returned true after Stop")
	}
	hub.Stop()
}

func TestHub_DeliversEventsInOrder(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	for i := 1; i <= 3; i++ {
		hub.BroadcastEvent(Event{
			Type: EventAnalysisProgress,
			Data: analysis.Progress{JobID: "job-1", Status: analysis.StatusProcessing, Current: i, Total: 3},
		})
	}

	// Each event arrives in its own frame.
	for i := 1; i <= 3; i++ {
		ev := readProgress(t, conn)
		if ev.Data.Current != i {
			t.Errorf("Frame %d: expected current=%d, got %d", i, i, ev.Data.Current)
		}
	}
}

func TestHub_MultipleClients(t *testing.T) {
	hub, url := startHub(t, HubConfig{})

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, url)
	}
	waitForClients(t, hub, 3)

	hub.BroadcastEvent(Event{
		Type: EventAnalysisProgress,
		Data: analysis.Progress{JobID: "job-2", Status: analysis.StatusCompleted, Percentage: 100},
	})

	for i, conn := range conns {
		ev := readProgress(t, conn)
		if ev.Type != EventAnalysisProgress || ev.Data.JobID != "job-2" {
			t.Errorf("Client %d got unexpected event %+v", i, ev)
		}
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url := startHub(t, HubConfig{})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_ServeWsAfterStop(t *testing.T) {
	hub := NewHub(HubConfig{})
	go hub.Run()
	hub.Stop()

	deadline := time.Now().Add(time.Second)
	for !hub.IsStopped() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	rec := httptest.NewRecorder()
	hub.ServeWs(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 after stop, got %d", rec.Code)
	}
}

func TestHub_OriginCheck(t *testing.T) {
	_, url := startHub(t, HubConfig{AllowedOrigins: []string{"http://allowed.example"}})

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("Expected connection from disallowed origin to fail")
	}

	header.Set("Origin", "http://allowed.example")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Failed to connect from allowed origin: %v", err)
	}
	conn.Close()
}

func TestProgressForwarder_JobChanged(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	NewProgressForwarder(hub).JobChanged(analysis.Progress{
		JobID:      "job-1",
		Status:     analysis.StatusProcessing,
		Current:    1,
		Total:      4,
		Percentage: 25,
		DeckIDs:    []string{"deck-1"},
	})

	ev := readProgress(t, conn)
	if ev.Type != EventAnalysisProgress {
		t.Errorf("Expected type %s, got %s", EventAnalysisProgress, ev.Type)
	}
	if ev.Data.JobID != "job-1" || ev.Data.Percentage != 25 {
		t.Errorf("Unexpected progress payload: %+v", ev.Data)
	}
	if ev.Data.DeckIDs != nil {
		t.Errorf("Deck ids should not be sent to clients, got %v", ev.Data.DeckIDs)
	}
}

func TestProgressForwarder_NilHub(t *testing.T) {
	// Must not panic.
	NewProgressForwarder(nil).JobChanged(analysis.Progress{JobID: "x"})
}
