package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/QuranLO/core/format"
)

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message %s: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketComposeStreamsFragments(t *testing.T) {
	_, ts := newTestServer(t, Config{Bismillah: true, Footer: true})
	conn := dial(t, ts.URL, nil)

	req := `{"id": "r1", "ref": "112:1-4", "sources": [{"type": "Translation", "version": "Pickthall"}]}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatal(err)
	}

	wantKinds := []format.Kind{format.KindBismillah, format.KindVerses, format.KindFooter}
	for i, k := range wantKinds {
		msg := readMessage(t, conn)
		if msg.Type != MessageFragment || msg.ID != "r1" || msg.Index != i {
			t.Fatalf("message %d = %+v", i, msg)
		}
		if msg.Fragment == nil || msg.Fragment.Kind != k {
			t.Errorf("fragment %d = %+v, want kind %s", i, msg.Fragment, k)
		}
	}

	done := readMessage(t, conn)
	if done.Type != MessageComplete || done.Count != 3 || done.Reference != "112:1-4" || done.ID != "r1" {
		t.Errorf("complete = %+v", done)
	}
}

func TestWebSocketErrors(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	conn := dial(t, ts.URL, nil)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed", `{"ref":`, "INVALID_JSON"},
		{"verse past end", `{"id": "x", "ref": "114:7", "sources": [{"type": "Original"}]}`, "VERSE_NOT_FOUND"},
		{"inverted range", `{"ref": "1:5-2", "sources": [{"type": "Original"}]}`, "INVALID_RANGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.body)); err != nil {
				t.Fatal(err)
			}
			msg := readMessage(t, conn)
			if msg.Type != MessageError || msg.Error == nil || msg.Error.Code != tt.wantCode {
				t.Errorf("message = %+v, want error %s", msg, tt.wantCode)
			}
		})
	}

	// The connection survives request errors.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"ref": "1:1", "sources": [{"type": "Original"}]}`)); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageFragment {
		t.Errorf("message after errors = %+v", msg)
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	_, ts := newTestServer(t, Config{MaxMessageRate: 1})
	conn := dial(t, ts.URL, nil)

	// Burst capacity is twice the rate.
	for i := 0; i < 3; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"ref":`)); err != nil {
			t.Fatal(err)
		}
	}
	var codes []string
	for i := 0; i < 3; i++ {
		codes = append(codes, readMessage(t, conn).Error.Code)
	}
	if codes[2] != "RATE_LIMITED" {
		t.Errorf("codes = %v, want third message rate limited", codes)
	}
}

func TestWebSocketOriginCheck(t *testing.T) {
	_, ts := newTestServer(t, Config{AllowedOrigins: []string{"https://quran.example"}})
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"https://evil.example"}}
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, header); err == nil {
		t.Fatal("connection from disallowed origin succeeded")
	} else if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	dial(t, ts.URL, http.Header{"Origin": []string{"https://quran.example"}})
}

func TestWebSocketMessageSizeLimit(t *testing.T) {
	srv, ts := newTestServer(t, Config{MaxMessageSize: 64})
	conn := dial(t, ts.URL, nil)
	waitForClients(t, srv.Hub(), 1)

	big := `{"ref": "1", "arabic_font": "` + strings.Repeat("x", 128) + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(big)); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("oversized message did not close the connection")
	}
	waitForClients(t, srv.Hub(), 0)
}

func TestHubBroadcastAndClose(t *testing.T) {
	srv, ts := newTestServer(t, Config{})
	a := dial(t, ts.URL, nil)
	b := dial(t, ts.URL, nil)
	waitForClients(t, srv.Hub(), 2)

	srv.Hub().Broadcast(Message{Type: "notice", Reference: "1"})
	for _, conn := range []*websocket.Conn{a, b} {
		if msg := readMessage(t, conn); msg.Type != "notice" || msg.Timestamp == "" {
			t.Errorf("broadcast = %+v", msg)
		}
	}

	srv.Hub().Close()
	for _, conn := range []*websocket.Conn{a, b} {
		if msg := readMessage(t, conn); msg.Type != MessageShutdown {
			t.Errorf("shutdown message = %+v", msg)
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, _, err := conn.ReadMessage()
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("close error = %v, want going away", err)
		}
	}
	waitForClients(t, srv.Hub(), 0)

	// A closed hub refuses new clients.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Error("closed hub accepted a client")
		}
		conn.Close()
	}
}

func TestHubStopsWithContext(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)
	hub.Start(ctx)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancel")
	}
	hub.Close()
}
