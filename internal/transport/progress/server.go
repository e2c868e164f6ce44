// Package progress streams export progress to websocket clients on the
// loopback interface and lets them request cancellation.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu       sync.Mutex
	runID    string
	fraction float64
	done     []byte
	clients  map[string]chan []byte

	cancelOnce sync.Once
	cancelled  chan struct{}
}

func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only, see Handler
		},
		clients:   map[string]chan []byte{},
		cancelled: make(chan struct{}),
	}
}

// SetRunID tags subsequent messages with the export run id.
func (s *Server) SetRunID(id string) {
	s.mu.Lock()
	s.runID = id
	s.mu.Unlock()
}

// SetProgress broadcasts a fraction in [0,1]. Values below the last one
// sent are raised to it so clients never see progress go backwards.
func (s *Server) SetProgress(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fraction = min(max(fraction, s.fraction), 1)
	s.fraction = fraction
	b, _ := json.Marshal(ProgressMsg{Type: TypeProgress, ProtocolVersion: Version, RunID: s.runID, Fraction: fraction})
	s.broadcastLocked(b)
}

// Finish broadcasts the final status; late subscribers receive it on
// connect.
func (s *Server) Finish(status, digest string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := json.Marshal(DoneMsg{Type: TypeDone, ProtocolVersion: Version, RunID: s.runID, Status: status, Digest: digest})
	s.done = b
	s.broadcastLocked(b)
}

// Fraction returns the last fraction sent.
func (s *Server) Fraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fraction
}

// Cancelled is closed once any client sent CANCEL.
func (s *Server) Cancelled() <-chan struct{} { return s.cancelled }

// Cancel requests cancellation as if a client had sent CANCEL.
func (s *Server) Cancel() {
	s.cancelOnce.Do(func() {
		s.log.Printf("cancellation requested")
		close(s.cancelled)
	})
}

func (s *Server) broadcastLocked(b []byte) {
	for _, out := range s.clients {
		select {
		case out <- b:
		default:
			// Slow client; it will catch up with the next message.
		}
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub ClientMsg
		if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != TypeSubscribe || sub.ProtocolVersion != Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := fmt.Sprintf("P%d", s.nextID.Add(1))
		out := make(chan []byte, 16)
		s.mu.Lock()
		b, _ := json.Marshal(ProgressMsg{Type: TypeProgress, ProtocolVersion: Version, RunID: s.runID, Fraction: s.fraction})
		out <- b
		if s.done != nil {
			out <- s.done
		}
		s.clients[sid] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, sid)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: CANCEL is the only request after the handshake.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var m ClientMsg
			if err := json.Unmarshal(msg, &m); err != nil || m.ProtocolVersion != Version {
				continue
			}
			if m.Type == TypeCancel {
				s.log.Printf("client %s sent CANCEL", sid)
				s.Cancel()
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
