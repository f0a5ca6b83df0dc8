package binding

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/scenewire/engine/internal/variable"
)

// Source identifies the kind of external data source a binding reads from.
type Source string

const (
	SourceAPI       Source = "api"
	SourceWebhook   Source = "webhook"
	SourceWebSocket Source = "websocket"
	SourceMQTT      Source = "mqtt"
)

// APIConfig configures an HTTP polling source. RefreshInterval of zero
// means fetch once, then the binding disables itself.
type APIConfig struct {
	URL             string            `json:"url"`
	Method          string            `json:"method"`
	Headers         map[string]string `json:"headers,omitempty"`
	Body            string            `json:"body,omitempty"`
	JSONPath        string            `json:"jsonPath"`
	RefreshInterval time.Duration     `json:"refreshInterval"`
}

// WebSocketConfig configures a streaming WebSocket source. Reconnect
// attempts repeat indefinitely while the binding is enabled; manual
// re-enable is the only other recovery path. A ReconnectInterval of zero
// is floored to one second.
type WebSocketConfig struct {
	URL               string        `json:"url"`
	JSONPath          string        `json:"jsonPath"`
	ReconnectInterval time.Duration `json:"reconnectInterval"`
}

// WebhookConfig configures a passive inbound source. Transform, when set,
// names a caller-registered function applied to the extracted value before
// coercion; evaluating author-supplied expressions is the caller's concern.
type WebhookConfig struct {
	WebhookID string `json:"webhookId"`
	JSONPath  string `json:"jsonPath"`
	Transform string `json:"transform,omitempty"`
}

// MQTTConfig configures an MQTT stream source.
type MQTTConfig struct {
	BrokerURL string `json:"brokerUrl"`
	Topic     string `json:"topic"`
	JSONPath  string `json:"jsonPath"`
}

// DataBinding connects one external data source to one scene variable.
// Exactly one config variant is populated, matching Source. LastUpdated,
// LastValue and Error are write-only telemetry maintained by the Manager.
type DataBinding struct {
	ID         string `json:"id"`
	VariableID string `json:"variableId"`
	Source     Source `json:"source"`
	Enabled    bool   `json:"enabled"`

	API       *APIConfig       `json:"apiConfig,omitempty"`
	Webhook   *WebhookConfig   `json:"webhookConfig,omitempty"`
	WebSocket *WebSocketConfig `json:"websocketConfig,omitempty"`
	MQTT      *MQTTConfig      `json:"mqttConfig,omitempty"`

	LastUpdated time.Time      `json:"lastUpdated,omitempty"`
	LastValue   variable.Value `json:"lastValue,omitempty"`
	Error       string         `json:"error,omitempty"`

	// rev is bumped on every definition change so reconciliation can tell
	// an edited binding from an untouched one.
	rev int
}

// NewDataBinding creates a binding with a generated ID, initially disabled.
func NewDataBinding(variableID string, source Source) *DataBinding {
	return &DataBinding{
		ID:         uuid.New().String(),
		VariableID: variableID,
		Source:     source,
	}
}

// Validate rejects malformed bindings at creation/edit time rather than
// letting them fail mid-run.
func (b *DataBinding) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("binding id required")
	}
	if b.VariableID == "" {
		return fmt.Errorf("binding %s: variableId required", b.ID)
	}

	configured := 0
	for _, set := range []bool{b.API != nil, b.Webhook != nil, b.WebSocket != nil, b.MQTT != nil} {
		if set {
			configured++
		}
	}
	if configured != 1 {
		return fmt.Errorf("binding %s: exactly one source config required, got %d", b.ID, configured)
	}

	switch b.Source {
	case SourceAPI:
		if b.API == nil {
			return fmt.Errorf("binding %s: apiConfig required for api source", b.ID)
		}
		return b.API.validate(b.ID)
	case SourceWebhook:
		if b.Webhook == nil {
			return fmt.Errorf("binding %s: webhookConfig required for webhook source", b.ID)
		}
		if b.Webhook.WebhookID == "" {
			return fmt.Errorf("binding %s: webhookId required", b.ID)
		}
		return nil
	case SourceWebSocket:
		if b.WebSocket == nil {
			return fmt.Errorf("binding %s: websocketConfig required for websocket source", b.ID)
		}
		return b.WebSocket.validate(b.ID)
	case SourceMQTT:
		if b.MQTT == nil {
			return fmt.Errorf("binding %s: mqttConfig required for mqtt source", b.ID)
		}
		return b.MQTT.validate(b.ID)
	}
	return fmt.Errorf("binding %s: unknown source %q", b.ID, b.Source)
}

func (c *APIConfig) validate(bindingID string) error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("binding %s: invalid api url %q", bindingID, c.URL)
	}
	if c.Method != http.MethodGet && c.Method != http.MethodPost {
		return fmt.Errorf("binding %s: method must be GET or POST, got %q", bindingID, c.Method)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("binding %s: refreshInterval must be non-negative", bindingID)
	}
	return nil
}

func (c *WebSocketConfig) validate(bindingID string) error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("binding %s: invalid websocket url %q", bindingID, c.URL)
	}
	if c.ReconnectInterval < 0 {
		return fmt.Errorf("binding %s: reconnectInterval must be non-negative", bindingID)
	}
	return nil
}

func (c *MQTTConfig) validate(bindingID string) error {
	u, err := url.Parse(c.BrokerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("binding %s: invalid mqtt broker url %q", bindingID, c.BrokerURL)
	}
	if c.Topic == "" {
		return fmt.Errorf("binding %s: mqtt topic required", bindingID)
	}
	return nil
}

// jsonPath returns the extraction path for whichever config is active.
func (b *DataBinding) jsonPath() string {
	switch {
	case b.API != nil:
		return b.API.JSONPath
	case b.Webhook != nil:
		return b.Webhook.JSONPath
	case b.WebSocket != nil:
		return b.WebSocket.JSONPath
	case b.MQTT != nil:
		return b.MQTT.JSONPath
	}
	return ""
}
