package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// variable
	"variable.created": {},
	"variable.changed": {},
	"variable.removed": {},

	// binding
	"binding.created": {},
	"binding.updated": {},
	"binding.removed": {},
	"binding.started": {},
	"binding.stopped": {},
	"binding.error":   {},

	// webhook
	"webhook.created":  {},
	"webhook.removed":  {},
	"webhook.received": {},
	"webhook.rejected": {},

	// animation
	"animation.created":   {},
	"animation.removed":   {},
	"animation.triggered": {},

	// tween
	"tween.started":   {},
	"tween.completed": {},

	// client (UI event stream)
	"client.connected":    {},
	"client.disconnected": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
