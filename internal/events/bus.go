package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Store defines the persistence required by the event bus. The production
// implementation is the outbox repository; the worker drains the table and
// delivers to subscribers.
type Store interface {
	Insert(ctx context.Context, topic, aggregateID string, payload []byte) error
}

// Notifier reacts to emitted events in-process (metrics, log fan-out).
type Notifier interface {
	Notify(ctx context.Context, topic, aggregateID string, payload []byte) error
}

// Bus persists domain events and fans them out to in-process handlers.
// Persistence failures are hard errors; notifier failures are joined and
// returned but do not undo the stored event.
type Bus struct {
	Store     Store
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, topic, aggregateID string, payload any) error {
	if b == nil || b.Store == nil {
		return errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	if strings.TrimSpace(aggregateID) == "" {
		return errors.New("events: aggregate id is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("events: encode payload: %w", err)
	}
	if err := b.Store.Insert(ctx, topic, aggregateID, encoded); err != nil {
		return fmt.Errorf("events: persist event: %w", err)
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, topic, aggregateID, encoded); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return joined
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	switch v := payload.(type) {
	case []byte:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	case json.RawMessage:
		return encodePayload([]byte(v))
	case string:
		if strings.TrimSpace(v) == "" {
			return []byte("{}"), nil
		}
		return encodePayload([]byte(v))
	default:
		return json.Marshal(v)
	}
}
