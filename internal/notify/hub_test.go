package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Subscribers() = %d, want %d", h.Subscribers(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForSubscribers(t, h, 1)

	id := uuid.New()
	h.Notify(Status{LoadID: id, Kind: KindLoading, Mode: "remote", Message: "Loading data..."})
	h.Notify(Status{LoadID: id, Kind: KindSuccess, Mode: "remote", Message: "Data loaded"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []Kind{KindLoading, KindSuccess} {
		var got Status
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if got.Kind != want || got.LoadID != id {
			t.Errorf("got %+v, want kind %q", got, want)
		}
	}
}

func TestHub_ReplaysLastStatus(t *testing.T) {
	h := NewHub(nil)
	h.Notify(Status{Kind: KindError, Message: "Error loading data", Fallback: false})

	conn := dialHub(t, h)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Status
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Kind != KindError {
		t.Errorf("Kind = %q, want %q", got.Kind, KindError)
	}

	last, ok := h.Last()
	if !ok || last.Message != "Error loading data" {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForSubscribers(t, h, 1)

	conn.Close()
	waitForSubscribers(t, h, 0)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForSubscribers(t, h, 1)

	h.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to close")
	}
	if h.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", h.Subscribers())
	}
}

func TestMulti(t *testing.T) {
	var a, b []Kind
	m := Multi{
		NotifierFunc(func(s Status) { a = append(a, s.Kind) }),
		nil,
		NotifierFunc(func(s Status) { b = append(b, s.Kind) }),
	}

	m.Notify(Status{Kind: KindLoading})

	if len(a) != 1 || len(b) != 1 {
		t.Errorf("fan-out = %v/%v", a, b)
	}
}

func TestLastBeforeNotify(t *testing.T) {
	h := NewHub(nil)
	if _, ok := h.Last(); ok {
		t.Error("Last() ok = true before any status")
	}
}

func TestHub_CheckOrigin(t *testing.T) {
	h := NewHub(nil)
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	tests := []struct {
		name   string
		origin string
		wantOK bool
	}{
		{"no origin", "", true},
		{"same origin", server.URL, true},
		{"other origin", "http://evil.example", false},
		{"other port", "http://127.0.0.1:1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("dial: %v", err)
				}
				conn.Close()
				return
			}
			if err == nil {
				conn.Close()
				t.Fatal("dial succeeded, want rejection")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %v, want 403", resp)
			}
		})
	}
}

func TestHub_SupersededNotReplayed(t *testing.T) {
	h := NewHub(nil)
	h.Notify(Status{Kind: KindSuccess, Message: "File loaded."})
	h.Notify(Status{Kind: KindError, Message: "Superseded by a newer load.", Superseded: true})

	last, ok := h.Last()
	if !ok || last.Kind != KindSuccess {
		t.Errorf("Last() = %+v, %v; want the success status", last, ok)
	}
}
