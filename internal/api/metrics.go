package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/scenewire/engine/internal/events"
	"github.com/scenewire/engine/internal/version"
)

var metricsState = &MetricsState{}

// MetricsState holds runtime metrics for the /metrics endpoint.
type MetricsState struct {
	mu                sync.RWMutex
	startTime         time.Time
	sceneName         string
	postgresConnected bool

	variableCount func() int
	workerCount   func() int
	tweenCount    func() int
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
}

// SetSceneName sets the scene name for metrics labels.
func SetSceneName(name string) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.sceneName = name
}

// SetPostgresConnected records whether event persistence is available.
func SetPostgresConnected(connected bool) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.postgresConnected = connected
}

// SetGauges wires the engine's live counts into the metrics endpoint.
func SetGauges(variables, workers, tweens func() int) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.variableCount = variables
	metricsState.workerCount = workers
	metricsState.tweenCount = tweens
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	metricsState.mu.RLock()
	startTime := metricsState.startTime
	sceneName := metricsState.sceneName
	pgConnected := metricsState.postgresConnected
	variableCount := metricsState.variableCount
	workerCount := metricsState.workerCount
	tweenCount := metricsState.tweenCount
	metricsState.mu.RUnlock()

	uptime := time.Since(startTime).Seconds()
	eventsTotal := events.TotalCount()
	wsClients := events.SubscriberCount()

	pgConnectedVal := 0
	if pgConnected {
		pgConnectedVal = 1
	}

	variables, workers, tweens := 0, 0, 0
	if variableCount != nil {
		variables = variableCount()
	}
	if workerCount != nil {
		workers = workerCount()
	}
	if tweenCount != nil {
		tweens = tweenCount()
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}, labels string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		if labels != "" {
			fmt.Fprintf(w, "%s{%s} %v\n", name, labels, value)
		} else {
			fmt.Fprintf(w, "%s %v\n", name, value)
		}
	}

	labels := fmt.Sprintf(`scene="%s",instance="%s",version="%s"`, sceneName, hostname, version.Version)

	writeMetric("scenewire_uptime_seconds", "gauge",
		"Number of seconds since the engine started", uptime, labels)

	writeMetric("scenewire_events_total", "counter",
		"Total number of events emitted since startup", eventsTotal, labels)

	writeMetric("scenewire_variables", "gauge",
		"Number of scene variables", variables, labels)

	writeMetric("scenewire_binding_workers", "gauge",
		"Number of running binding source workers", workers, labels)

	writeMetric("scenewire_active_tweens", "gauge",
		"Number of in-flight tweens", tweens, labels)

	writeMetric("scenewire_postgres_connected", "gauge",
		"Whether PostgreSQL is connected (1) or not (0)", pgConnectedVal, labels)

	writeMetric("scenewire_ws_clients", "gauge",
		"Number of active WebSocket client connections", wsClients, labels)
}
