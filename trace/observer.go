package trace

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 256
	writeTimeout = 5 * time.Second
)

// Observer fans trace envelopes out to websocket viewers. Slow viewers lose
// frames rather than stall the match.
type Observer struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]chan []byte
	header  []byte
	closed  bool

	nextID  atomic.Uint64
	dropped atomic.Int64
}

func NewObserver() *Observer {
	return &Observer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Handler upgrades the request and streams every later broadcast to it. A
// viewer that joins mid-match first receives the header.
func (o *Observer) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := o.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Warn("observer upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		id, out, ok := o.join()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "match over"), time.Now().Add(time.Second))
			return
		}
		defer o.leave(id)
		slog.Info("observer joined", "id", id, "remote", r.RemoteAddr)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match over"), time.Now().Add(time.Second))
		}()

		// Viewers never send anything meaningful; reading only detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		o.leave(id)
		<-done
		slog.Info("observer left", "id", id)
	}
}

func (o *Observer) join() (uint64, chan []byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return 0, nil, false
	}
	id := o.nextID.Add(1)
	out := make(chan []byte, clientBuffer)
	if o.header != nil {
		out <- o.header
	}
	o.clients[id] = out
	return id, out, true
}

func (o *Observer) leave(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if out, ok := o.clients[id]; ok {
		delete(o.clients, id)
		close(out)
	}
}

// Broadcast sends env to every connected viewer.
func (o *Observer) Broadcast(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if env.Type == TypeHeader {
		o.header = b
	}
	for _, out := range o.clients {
		select {
		case out <- b:
		default:
			o.dropped.Add(1)
		}
	}
	return nil
}

// Clients is the number of connected viewers.
func (o *Observer) Clients() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.clients)
}

// Dropped counts frames discarded for slow viewers.
func (o *Observer) Dropped() int64 { return o.dropped.Load() }

// Close ends every viewer's stream and refuses new ones.
func (o *Observer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	for id, out := range o.clients {
		delete(o.clients, id)
		close(out)
	}
}
