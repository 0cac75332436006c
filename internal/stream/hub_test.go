package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pmercer/marketwire/internal/model"
)

type fakeCommander struct {
	mu      sync.Mutex
	modes   []model.DeliveryMode
	filters []string
	nexts   int
	added   [][]string
	removed []string
	toggled []string
}

func (f *fakeCommander) SetMode(mode model.DeliveryMode) {
	f.mu.Lock()
	f.modes = append(f.modes, mode)
	f.mu.Unlock()
}

func (f *fakeCommander) RequestNext() bool {
	f.mu.Lock()
	f.nexts++
	f.mu.Unlock()
	return true
}

func (f *fakeCommander) SetFilter(symbol string) {
	f.mu.Lock()
	f.filters = append(f.filters, symbol)
	f.mu.Unlock()
}

func (f *fakeCommander) AddSymbols(_ context.Context, symbols []string) map[string]bool {
	f.mu.Lock()
	f.added = append(f.added, symbols)
	f.mu.Unlock()
	out := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		out[s] = true
	}
	return out
}

func (f *fakeCommander) RemoveSymbol(_ context.Context, symbol string) {
	f.mu.Lock()
	f.removed = append(f.removed, symbol)
	f.mu.Unlock()
}

func (f *fakeCommander) TogglePriority(_ context.Context, symbol string) bool {
	f.mu.Lock()
	f.toggled = append(f.toggled, symbol)
	f.mu.Unlock()
	return true
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return frame
}

func TestAlertBroadcast(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil, nil)
	defer hub.Close()
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	item := model.NewAlertItem("NVDA", model.AlertPayload{
		Headline: "NVDA beats earnings",
		Verdict:  "AGGRESSIVE BUY (92% confidence) - bullish catalyst detected: beats",
		Sources:  []string{"Yahoo Finance", "AlphaVantage"},
		Impact:   model.ImpactHigh,
	})
	hub.AlertReady(item)

	frame := readFrame(t, conn)
	if frame["type"] != FrameAlertReady {
		t.Fatalf("type = %v", frame["type"])
	}
	if frame["symbol"] != "NVDA" || frame["headline"] != "NVDA beats earnings" {
		t.Fatalf("frame = %v", frame)
	}
	if frame["impact"] != "HIGH" {
		t.Fatalf("impact = %v", frame["impact"])
	}
}

func TestQueueDepthAndSyncBroadcast(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil, nil)
	defer hub.Close()
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	hub.QueueDepthChanged(3)
	frame := readFrame(t, conn)
	if frame["type"] != FrameQueueDepth || frame["depth"] != float64(3) {
		t.Fatalf("frame = %v", frame)
	}

	hub.UniverseSynced(512)
	frame = readFrame(t, conn)
	if frame["type"] != FrameUniverseSync || frame["symbols"] != float64(512) {
		t.Fatalf("frame = %v", frame)
	}
}

func TestCommandDispatch(t *testing.T) {
	cmd := &fakeCommander{}
	hub := NewHub(DefaultConfig(), cmd, nil)
	defer hub.Close()
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	frames := []string{
		`{"type":"set_mode","mode":"MANUAL"}`,
		`{"type":"request_next"}`,
		`{"type":"set_filter","symbol":"AAPL"}`,
		`{"type":"remove_symbol","symbol":"TSLA"}`,
		`{"type":"toggle_priority","symbol":"NVDA"}`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		cmd.mu.Lock()
		done := len(cmd.modes) == 1 && cmd.nexts == 1 &&
			len(cmd.filters) == 1 && len(cmd.removed) == 1 && len(cmd.toggled) == 1
		cmd.mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("commands not dispatched: %+v", cmd)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	if cmd.modes[0] != model.ModeManual || cmd.filters[0] != "AAPL" ||
		cmd.removed[0] != "TSLA" || cmd.toggled[0] != "NVDA" {
		t.Fatalf("dispatch values wrong: %+v", cmd)
	}
}

func TestAddSymbolsRoundTrip(t *testing.T) {
	cmd := &fakeCommander{}
	hub := NewHub(DefaultConfig(), cmd, nil)
	defer hub.Close()
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	req := `{"type":"add_symbols","symbols":["AAPL","MSFT"]}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != FrameAddResult {
		t.Fatalf("type = %v", frame["type"])
	}
	results, ok := frame["results"].(map[string]any)
	if !ok || results["AAPL"] != true || results["MSFT"] != true {
		t.Fatalf("results = %v", frame["results"])
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil, nil)
	defer hub.Close()

	a := dialHub(t, hub)
	b := dialHub(t, hub)
	waitForClients(t, hub, 2)

	hub.QueueDepthChanged(1)

	for _, conn := range []*websocket.Conn{a, b} {
		frame := readFrame(t, conn)
		if frame["type"] != FrameQueueDepth {
			t.Fatalf("frame = %v", frame)
		}
	}
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	cmd := &fakeCommander{}
	hub := NewHub(DefaultConfig(), cmd, nil)
	defer hub.Close()
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"request_next"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		cmd.mu.Lock()
		n := cmd.nexts
		cmd.mu.Unlock()
		if n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("connection did not survive a malformed frame")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
