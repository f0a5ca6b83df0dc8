package binding

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scenewire/engine/internal/events"
)

// WebhookEndpoint is a stable inbound URL that any number of
// webhook-sourced bindings may reference by webhookId. Deleting one orphans
// its bindings; they simply stop receiving data.
type WebhookEndpoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"createdAt"`
}

// EndpointRegistry maintains the webhookId -> endpoint table.
type EndpointRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]*WebhookEndpoint
}

// NewEndpointRegistry creates an empty registry.
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{
		endpoints: make(map[string]*WebhookEndpoint),
	}
}

// Create registers a new endpoint with a generated ID and secret. baseURL
// is the externally visible address of the ingestion route.
func (r *EndpointRegistry) Create(name, baseURL string) (*WebhookEndpoint, error) {
	secret, err := newSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate webhook secret: %w", err)
	}

	ep := &WebhookEndpoint{
		ID:        uuid.New().String(),
		Name:      name,
		Secret:    secret,
		CreatedAt: time.Now().UTC(),
	}
	ep.URL = fmt.Sprintf("%s/api/webhooks/scene/%s", baseURL, ep.ID)

	r.mu.Lock()
	r.endpoints[ep.ID] = ep
	r.mu.Unlock()

	events.Emit("info", "webhook.created", "", map[string]interface{}{
		"webhook_id": ep.ID,
		"name":       name,
	})

	cpy := *ep
	return &cpy, nil
}

// Get returns a copy of the endpoint, or false if unknown.
func (r *EndpointRegistry) Get(id string) (WebhookEndpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ep, ok := r.endpoints[id]; ok {
		return *ep, true
	}
	return WebhookEndpoint{}, false
}

// All returns a snapshot of every endpoint.
func (r *EndpointRegistry) All() []WebhookEndpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WebhookEndpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, *ep)
	}
	return out
}

// Remove deletes an endpoint. Referencing bindings become orphans, which is
// not an error.
func (r *EndpointRegistry) Remove(id string) {
	r.mu.Lock()
	_, existed := r.endpoints[id]
	delete(r.endpoints, id)
	r.mu.Unlock()

	if existed {
		events.Emit("info", "webhook.removed", "", map[string]interface{}{
			"webhook_id": id,
		})
	}
}

// VerifySecret compares a presented secret against the endpoint's in
// constant time. Unknown endpoints never verify.
func (r *EndpointRegistry) VerifySecret(id, presented string) bool {
	r.mu.RLock()
	ep, ok := r.endpoints[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(ep.Secret), []byte(presented)) == 1
}

func newSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
