package binding

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiWorker polls an HTTP endpoint on a fixed interval. Failures are
// recorded and the next tick proceeds on schedule; there is no backoff and
// no skipped tick.
type apiWorker struct {
	mgr     *Manager
	binding DataBinding // snapshot taken at start
	rev     int
	stopCh  chan struct{}
}

func startAPIWorker(m *Manager, b DataBinding, rev int) *apiWorker {
	w := &apiWorker{
		mgr:     m,
		binding: b,
		rev:     rev,
		stopCh:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *apiWorker) run() {
	cfg := w.binding.API

	w.fetchOnce()

	if cfg.RefreshInterval == 0 {
		w.mgr.disableAfterOneShot(w.binding.ID, w.rev)
		return
	}

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.fetchOnce()
		}
	}
}

// fetchOnce performs one request. The result passes through Manager.apply,
// which discards it if the binding was disabled while the request was in
// flight.
func (w *apiWorker) fetchOnce() {
	cfg := w.binding.API

	var body io.Reader
	if cfg.Method == http.MethodPost && cfg.Body != "" {
		body = strings.NewReader(cfg.Body)
	}

	req, err := http.NewRequest(cfg.Method, cfg.URL, body)
	if err != nil {
		w.mgr.recordError(w.binding.ID, fmt.Errorf("build request: %w", err))
		return
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.mgr.httpClient.Do(req)
	if err != nil {
		w.mgr.recordError(w.binding.ID, fmt.Errorf("fetch %s: %w", cfg.URL, err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.mgr.recordError(w.binding.ID, fmt.Errorf("fetch %s: status %s", cfg.URL, resp.Status))
		return
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		w.mgr.recordError(w.binding.ID, fmt.Errorf("read response: %w", err))
		return
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		w.mgr.recordError(w.binding.ID, fmt.Errorf("decode response: %w", err))
		return
	}

	w.mgr.apply(w.binding.ID, w.rev, payload)
}

func (w *apiWorker) stop() {
	close(w.stopCh)
}
