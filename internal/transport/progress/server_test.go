package progress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string) {
	t.Helper()
	if err := conn.WriteJSON(ClientMsg{Type: typ, ProtocolVersion: Version}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readProgress(t *testing.T, conn *websocket.Conn) ProgressMsg {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m ProgressMsg
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Type != TypeProgress {
		t.Fatalf("type=%s want %s", m.Type, TypeProgress)
	}
	return m
}

func TestServer_StreamsProgressAndCancels(t *testing.T) {
	s := NewServer(nil)
	s.SetRunID("run-7")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	send(t, conn, TypeSubscribe)

	if m := readProgress(t, conn); m.Fraction != 0 || m.RunID != "run-7" {
		t.Fatalf("initial = %+v", m)
	}
	s.SetProgress(0.5)
	if m := readProgress(t, conn); m.Fraction != 0.5 {
		t.Fatalf("fraction=%v want 0.5", m.Fraction)
	}
	s.SetProgress(0.25)
	if m := readProgress(t, conn); m.Fraction != 0.5 {
		t.Fatalf("progress went backwards: %v", m.Fraction)
	}

	send(t, conn, TypeCancel)
	select {
	case <-s.Cancelled():
	case <-time.After(5 * time.Second):
		t.Fatalf("CANCEL not observed")
	}

	s.Finish("cancelled", "")
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read done: %v", err)
	}
	var done DoneMsg
	if err := json.Unmarshal(raw, &done); err != nil || done.Type != TypeDone || done.Status != "cancelled" {
		t.Fatalf("done = %s (%v)", raw, err)
	}
}

func TestServer_RejectsBadHandshake(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	send(t, conn, TypeCancel)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("err=%v want policy violation close", err)
	}
	select {
	case <-s.Cancelled():
		t.Fatalf("CANCEL before SUBSCRIBE was honoured")
	default:
	}
}

func TestServer_LoopbackOnly(t *testing.T) {
	s := NewServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	rw := httptest.NewRecorder()
	s.Handler()(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("code=%d want 403", rw.Code)
	}
}

func TestServer_CancelIsIdempotent(t *testing.T) {
	s := NewServer(nil)
	s.Cancel()
	s.Cancel()
	select {
	case <-s.Cancelled():
	default:
		t.Fatalf("not cancelled")
	}
	s.SetProgress(2)
	if got := s.Fraction(); got != 1 {
		t.Fatalf("fraction=%v want 1", got)
	}
}
