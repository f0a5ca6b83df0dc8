package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/cors"

	"github.com/scenewire/engine/internal/animation"
	"github.com/scenewire/engine/internal/binding"
	"github.com/scenewire/engine/internal/events"
	"github.com/scenewire/engine/internal/scene"
	"github.com/scenewire/engine/internal/variable"
)

// Server exposes the engine to the authoring UI and to inbound webhooks.
type Server struct {
	store     *variable.Store
	manager   *binding.Manager
	scheduler *animation.Scheduler
	webhooks  *binding.EndpointRegistry
	objects   *scene.Registry
	baseURL   string
}

// NewServer wires the API against the engine's components.
func NewServer(store *variable.Store, manager *binding.Manager, scheduler *animation.Scheduler,
	webhooks *binding.EndpointRegistry, objects *scene.Registry, baseURL string) *Server {
	return &Server{
		store:     store,
		manager:   manager,
		scheduler: scheduler,
		webhooks:  webhooks,
		objects:   objects,
		baseURL:   baseURL,
	}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "scenewire",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	writeJSON(w, http.StatusOK, resp)
}

// eventsHandler returns event history. With ?source=db and Postgres
// connected it reads persisted history; otherwise the in-memory ring
// buffer.
func eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("source") == "db" {
		pg := events.GetPostgresClient()
		if pg == nil {
			writeError(w, http.StatusServiceUnavailable, "event persistence not configured")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		rows, err := pg.Query(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}

	writeJSON(w, http.StatusOK, events.Snapshot())
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{OK: false, Error: msg})
}

// --- variables ---

type createVariableRequest struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Default interface{} `json:"default"`
}

func (s *Server) listVariablesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.All())
}

func (s *Server) createVariableHandler(w http.ResponseWriter, r *http.Request) {
	var req createVariableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	v, err := s.store.Define(req.Name, variable.Type(req.Type), req.Default)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

type setValueRequest struct {
	Value interface{} `json:"value"`
}

func (s *Server) setVariableHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, ok := s.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "variable not found")
		return
	}

	if _, _, err := s.store.Set(id, req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteVariableHandler(w http.ResponseWriter, r *http.Request) {
	s.store.Remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

// --- bindings ---

// Durations cross the API boundary in milliseconds.
type apiConfigDTO struct {
	URL               string            `json:"url"`
	Method            string            `json:"method"`
	Headers           map[string]string `json:"headers,omitempty"`
	Body              string            `json:"body,omitempty"`
	JSONPath          string            `json:"jsonPath"`
	RefreshIntervalMs int64             `json:"refreshInterval"`
}

type websocketConfigDTO struct {
	URL                 string `json:"url"`
	JSONPath            string `json:"jsonPath"`
	ReconnectIntervalMs int64  `json:"reconnectInterval"`
}

type bindingRequest struct {
	VariableID string                 `json:"variableId"`
	Source     string                 `json:"source"`
	Enabled    bool                   `json:"enabled"`
	API        *apiConfigDTO          `json:"apiConfig,omitempty"`
	Webhook    *binding.WebhookConfig `json:"webhookConfig,omitempty"`
	WebSocket  *websocketConfigDTO    `json:"websocketConfig,omitempty"`
	MQTT       *binding.MQTTConfig    `json:"mqttConfig,omitempty"`
}

func (req *bindingRequest) toBinding() *binding.DataBinding {
	b := binding.NewDataBinding(req.VariableID, binding.Source(req.Source))
	b.Enabled = req.Enabled
	if req.API != nil {
		b.API = &binding.APIConfig{
			URL:             req.API.URL,
			Method:          req.API.Method,
			Headers:         req.API.Headers,
			Body:            req.API.Body,
			JSONPath:        req.API.JSONPath,
			RefreshInterval: time.Duration(req.API.RefreshIntervalMs) * time.Millisecond,
		}
	}
	b.Webhook = req.Webhook
	if req.WebSocket != nil {
		b.WebSocket = &binding.WebSocketConfig{
			URL:               req.WebSocket.URL,
			JSONPath:          req.WebSocket.JSONPath,
			ReconnectInterval: time.Duration(req.WebSocket.ReconnectIntervalMs) * time.Millisecond,
		}
	}
	b.MQTT = req.MQTT
	return b
}

func (s *Server) listBindingsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.All())
}

func (s *Server) createBindingHandler(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, ok := s.store.Get(req.VariableID); !ok {
		writeError(w, http.StatusNotFound, "variable not found")
		return
	}

	b := req.toBinding()
	if err := s.manager.SetBinding(b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, _ := s.manager.Get(b.ID)
	writeJSON(w, http.StatusCreated, created)
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) enableBindingHandler(w http.ResponseWriter, r *http.Request) {
	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.manager.EnableBinding(r.PathValue("id"), req.Enabled); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

func (s *Server) deleteBindingHandler(w http.ResponseWriter, r *http.Request) {
	s.manager.RemoveBinding(r.PathValue("id"))
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

// --- animations ---

type animationRequest struct {
	VariableID  string     `json:"variableId"`
	ObjectID    string     `json:"objectId"`
	Property    string     `json:"property"`
	InputRange  [2]float64 `json:"inputRange"`
	OutputRange [2]float64 `json:"outputRange"`
	Mode        string     `json:"mode"`
	Easing      string     `json:"easing"`
	DurationMs  int64      `json:"duration"`
	Clamp       bool       `json:"clamp"`
}

func (s *Server) listAnimationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scheduler.All())
}

func (s *Server) createAnimationHandler(w http.ResponseWriter, r *http.Request) {
	var req animationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	a := animation.New(req.VariableID, req.ObjectID, scene.Property(req.Property))
	a.InputRange = req.InputRange
	a.OutputRange = req.OutputRange
	a.Mode = animation.Mode(req.Mode)
	a.Easing = req.Easing
	a.Duration = time.Duration(req.DurationMs) * time.Millisecond
	a.Clamp = req.Clamp

	if err := s.scheduler.Add(a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) deleteAnimationHandler(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

func (s *Server) triggerAnimationHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Trigger(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

// --- webhook endpoints ---

type createWebhookRequest struct {
	Name string `json:"name"`
}

func (s *Server) listWebhooksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.webhooks.All())
}

func (s *Server) createWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var req createWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	ep, err := s.webhooks.Create(req.Name, s.baseURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ep)
}

func (s *Server) deleteWebhookHandler(w http.ResponseWriter, r *http.Request) {
	s.webhooks.Remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

// ingestWebhookHandler receives inbound webhook payloads. The caller must
// present the endpoint's secret; verification happens here, before the
// payload reaches the binding manager.
func (s *Server) ingestWebhookHandler(w http.ResponseWriter, r *http.Request) {
	webhookID := r.PathValue("webhookId")

	if !s.webhooks.VerifySecret(webhookID, r.Header.Get("X-Webhook-Secret")) {
		events.Emit("warn", "webhook.rejected", "bad or missing secret", map[string]interface{}{
			"webhook_id": webhookID,
		})
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var payload interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.manager.ProcessWebhookData(webhookID, payload)
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

// --- scene objects ---

func (s *Server) getObjectHandler(w http.ResponseWriter, r *http.Request) {
	obj := s.objects.Get(r.PathValue("id"))
	if obj == nil {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) addObjectHandler(w http.ResponseWriter, r *http.Request) {
	var obj scene.Object
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if obj.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	s.objects.Add(&obj)
	writeJSON(w, http.StatusCreated, obj)
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /events", RequireAnyRole(eventsHandler))
	mux.HandleFunc("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /ws", wsEventsHandler)

	mux.HandleFunc("GET /api/variables", RequireAnyRole(s.listVariablesHandler))
	mux.HandleFunc("POST /api/variables", RequireAdmin(s.createVariableHandler))
	mux.HandleFunc("PUT /api/variables/{id}/value", RequireAnyRole(s.setVariableHandler))
	mux.HandleFunc("DELETE /api/variables/{id}", RequireAdmin(s.deleteVariableHandler))

	mux.HandleFunc("GET /api/bindings", RequireAnyRole(s.listBindingsHandler))
	mux.HandleFunc("POST /api/bindings", RequireAdmin(s.createBindingHandler))
	mux.HandleFunc("PUT /api/bindings/{id}/enabled", RequireAnyRole(s.enableBindingHandler))
	mux.HandleFunc("DELETE /api/bindings/{id}", RequireAdmin(s.deleteBindingHandler))

	mux.HandleFunc("GET /api/animations", RequireAnyRole(s.listAnimationsHandler))
	mux.HandleFunc("POST /api/animations", RequireAdmin(s.createAnimationHandler))
	mux.HandleFunc("POST /api/animations/{id}/trigger", RequireAnyRole(s.triggerAnimationHandler))
	mux.HandleFunc("DELETE /api/animations/{id}", RequireAdmin(s.deleteAnimationHandler))

	mux.HandleFunc("GET /api/webhooks", RequireAnyRole(s.listWebhooksHandler))
	mux.HandleFunc("POST /api/webhooks", RequireAdmin(s.createWebhookHandler))
	mux.HandleFunc("DELETE /api/webhooks/{id}", RequireAdmin(s.deleteWebhookHandler))

	// Inbound ingestion authenticates with the endpoint secret, not basic auth.
	mux.HandleFunc("POST /api/webhooks/scene/{webhookId}", s.ingestWebhookHandler)

	mux.HandleFunc("GET /api/objects/{id}", RequireAnyRole(s.getObjectHandler))
	mux.HandleFunc("POST /api/objects", RequireAdmin(s.addObjectHandler))

	return mux
}

// ListenAndServe starts the API server on the given port.
// It blocks until the server exits.
func (s *Server) ListenAndServe(port int) error {
	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Webhook-Secret"},
	}).Handler(s.Routes())

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: LoadTLSConfig(),
	}

	if IsTLSEnabled() && srv.TLSConfig != nil {
		log.Printf("API listening on %s (TLS)\n", addr)
		return srv.ListenAndServeTLS("", "")
	}

	log.Printf("API listening on %s\n", addr)
	return srv.ListenAndServe()
}

// Start starts the API server in a goroutine.
// Errors are logged but do not stop the caller.
func (s *Server) Start(port int) {
	go func() {
		if err := s.ListenAndServe(port); err != nil && err != http.ErrServerClosed {
			log.Printf("api server error: %v", err)
		}
	}()
}
