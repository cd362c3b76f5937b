package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leafcart/nursery-backend/pkg/logger"
)

// Notifier delivers one event.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type publisher interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
}

// PubSubNotifier publishes events to the notification topic, where the
// email collaborator consumes them.
type PubSubNotifier struct {
	publisher publisher
	topic     string
}

func NewPubSubNotifier(publisher publisher, topic string) (*PubSubNotifier, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	if topic == "" {
		return nil, fmt.Errorf("notification topic required")
	}
	return &PubSubNotifier{publisher: publisher, topic: topic}, nil
}

func (n *PubSubNotifier) Notify(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	attrs := map[string]string{
		"event_id": ev.ID.String(),
		"kind":     ev.Kind.String(),
	}
	if _, err := n.publisher.Publish(ctx, n.topic, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return nil
}

// LogNotifier only writes events to the application log. It backs local
// development where no topic exists.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) error {
	ctx = n.logg.WithFields(ctx, map[string]any{
		"event_id":     ev.ID.String(),
		"kind":         ev.Kind.String(),
		"order_number": ev.OrderNumber,
		"recipient":    ev.Recipient,
	})
	n.logg.Info(ctx, "notification.emitted")
	return nil
}
