package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tjgf2022/logkeeper-roles-hub/config"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// Actions published on the work-log lifecycle channel.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LogEvent is the payload published after a successful work-log
// mutation.
type LogEvent struct {
	Action string        `json:"action"`
	Actor  types.Viewer  `json:"actor"`
	Log    types.WorkLog `json:"log"`
	At     time.Time     `json:"at"`
}

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the publisher.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Publisher emits work-log lifecycle events. Publishing is best
// effort: a broker failure is logged and never surfaced to the caller
// that performed the mutation.
type Publisher struct {
	backend Backend
	channel string
	logger  *slog.Logger
}

func NewPublisher(backend Backend, channel string, logger *slog.Logger) *Publisher {
	return &Publisher{backend: backend, channel: channel, logger: logger}
}

// LogEvent publishes one lifecycle event. A nil publisher or nil
// backend is a no-op so callers need no configuration checks.
func (p *Publisher) LogEvent(ctx context.Context, action string, actor types.Viewer, log types.WorkLog) {
	if p == nil || p.backend == nil {
		return
	}

	payload, err := json.Marshal(LogEvent{
		Action: action,
		Actor:  actor,
		Log:    log,
		At:     time.Now(),
	})
	if err != nil {
		p.logger.Error("encode log event", "action", action, "log_id", log.ID, "error", err)
		return
	}

	attrs := map[string]string{"action": action}
	if _, err := p.backend.Publish(ctx, p.channel, payload, attrs); err != nil {
		p.logger.Error("publish log event", "action", action, "log_id", log.ID, "error", err)
	}
}

// Close shuts down the underlying backend, if any.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}

// NewBackend constructs the configured broker backend. "none" (or an
// empty value) returns nil, which Publisher treats as a no-op.
func NewBackend(ctx context.Context, cfg config.EventsConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQBackend(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubBackend(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
