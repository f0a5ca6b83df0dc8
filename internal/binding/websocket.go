package binding

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsWorker keeps one WebSocket connection open and writes every JSON
// message through the binding pipeline. On close it reconnects after the
// configured interval, indefinitely, for as long as the binding stays
// enabled. Non-JSON messages are ignored, not errors.
type wsWorker struct {
	mgr     *Manager
	binding DataBinding
	rev     int
	stopCh  chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

func startWSWorker(m *Manager, b DataBinding, rev int) *wsWorker {
	w := &wsWorker{
		mgr:     m,
		binding: b,
		rev:     rev,
		stopCh:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *wsWorker) run() {
	cfg := w.binding.WebSocket

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(cfg.URL, nil)
		if err != nil {
			w.mgr.recordError(w.binding.ID, fmt.Errorf("dial %s: %w", cfg.URL, err))
			if !w.waitReconnect(cfg.ReconnectInterval) {
				return
			}
			continue
		}

		// The worker may have been stopped while the handshake was in
		// flight; stop() saw a nil conn then, so close it here.
		if !w.installConn(conn) {
			conn.Close()
			return
		}
		w.readLoop(conn)
		w.setConn(nil)
		conn.Close()

		if !w.waitReconnect(cfg.ReconnectInterval) {
			return
		}
	}
}

func (w *wsWorker) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.stopCh:
				// Deliberate close, not a failure.
			default:
				w.mgr.recordError(w.binding.ID, fmt.Errorf("socket closed: %w", err))
			}
			return
		}

		var payload interface{}
		if err := json.Unmarshal(data, &payload); err != nil {
			continue
		}

		w.mgr.apply(w.binding.ID, w.rev, payload)
	}
}

// waitReconnect sleeps for the reconnect interval, flooring zero to one
// second so a down server is not redialed in a tight loop. Returns false if
// the worker was stopped while waiting, which suppresses the reconnect.
func (w *wsWorker) waitReconnect(d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}

	select {
	case <-w.stopCh:
		return false
	case <-time.After(d):
		return true
	}
}

// installConn publishes the connection so stop can close it. The stop check
// and the install happen under one lock: either stop sees the conn, or the
// worker sees the stop. Returns false when the worker was stopped.
func (w *wsWorker) installConn(conn *websocket.Conn) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.stopCh:
		return false
	default:
	}
	w.conn = conn
	return true
}

func (w *wsWorker) setConn(conn *websocket.Conn) {
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
}

// stop closes the socket to unblock the read loop and suppresses any
// scheduled reconnect.
func (w *wsWorker) stop() {
	close(w.stopCh)
	w.mu.Lock()
	if w.conn != nil {
		w.conn.Close()
	}
	w.mu.Unlock()
}
