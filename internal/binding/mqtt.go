package binding

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// mqttWorker subscribes to one MQTT topic and writes every JSON message
// through the binding pipeline. Paho's auto-reconnect stands in for the
// hand-rolled reconnect timer the websocket worker uses.
type mqttWorker struct {
	mgr     *Manager
	binding DataBinding
	rev     int
	client  paho.Client
}

func startMQTTWorker(m *Manager, b DataBinding, rev int) *mqttWorker {
	w := &mqttWorker{
		mgr:     m,
		binding: b,
		rev:     rev,
	}

	cfg := b.MQTT
	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID("scenewire-" + shortID(b.ID)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			token := c.Subscribe(cfg.Topic, 1, w.handleMessage)
			go func() {
				if token.Wait() && token.Error() != nil {
					w.mgr.recordError(b.ID, fmt.Errorf("mqtt subscribe %s: %w", cfg.Topic, token.Error()))
				}
			}()
		}).
		SetConnectionLostHandler(func(c paho.Client, err error) {
			w.mgr.recordError(b.ID, fmt.Errorf("mqtt connection lost: %w", err))
		})

	w.client = paho.NewClient(opts)

	// Connect retries in the background; a broker that is down at start is
	// a transient error, not a startup failure.
	token := w.client.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			w.mgr.recordError(b.ID, fmt.Errorf("mqtt connect %s: %w", cfg.BrokerURL, token.Error()))
		}
	}()

	return w
}

func (w *mqttWorker) handleMessage(_ paho.Client, msg paho.Message) {
	var payload interface{}
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		return // non-JSON messages are silently ignored
	}
	w.mgr.apply(w.binding.ID, w.rev, payload)
}

func (w *mqttWorker) stop() {
	w.client.Disconnect(250)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
