package outbox

import (
	"encoding/json"
	"fmt"
	"sync"

	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"

	"github.com/iancoleman/strcase"
)

// Decoder rebuilds an event from its JSON payload.
type Decoder func(payload []byte) (ddd.DomainEvent, error)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Codec turns events into type-tagged outbox content and back.
// Payloads are the events' own JSON encoding.
type Codec struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

func NewCodec() *Codec {
	return &Codec{decoders: make(map[string]Decoder)}
}

// Register binds an event name to its decoder. Names are stored as snake_case tags.
func (c *Codec) Register(eventName string, decoder Decoder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decoders[TypeTag(eventName)] = decoder
}

func (c *Codec) Encode(event ddd.DomainEvent) ([]byte, error) {
	if event == nil {
		return nil, errs.NewValueIsRequiredError("event")
	}

	tag := TypeTag(event.Name())
	c.mu.RLock()
	_, known := c.decoders[tag]
	c.mu.RUnlock()
	if !known {
		return nil, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("unregistered event type %q", tag))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", tag, err)
	}

	return json.Marshal(envelope{Type: tag, Payload: payload})
}

func (c *Codec) Decode(content []byte) (ddd.DomainEvent, error) {
	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("content", err)
	}

	c.mu.RLock()
	decoder, ok := c.decoders[env.Type]
	c.mu.RUnlock()
	if !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause("content", fmt.Errorf("unknown event type %q", env.Type))
	}

	return decoder(env.Payload)
}

// TypeTag is the outbox tag for an event name, e.g. OrderStatusChanged -> order_status_changed.
func TypeTag(eventName string) string {
	return strcase.ToSnake(eventName)
}
