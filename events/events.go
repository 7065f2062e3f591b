package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	SubjectProjectCreated = "devconnect.project.created"
	SubjectCommentCreated = "devconnect.comment.created"
	SubjectCommentLiked   = "devconnect.comment.liked"
	SubjectCommentUnliked = "devconnect.comment.unliked"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	ActorID    uuid.UUID `json:"actor_id"`
	ResourceID uuid.UUID `json:"resource_id"`
	ProjectID  uuid.UUID `json:"project_id,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(subject string, actor, resource uuid.UUID) Event {
	return Event{
		ID:         uuid.NewString(),
		Subject:    subject,
		ActorID:    actor,
		ResourceID: resource,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events after the change they describe has committed.
// Delivery is best effort; callers log and move on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	Name          string
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	conn conn
}

func Connect(cfg Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Msg("nats connected")
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := p.conn.Publish(event.Subject, data); err != nil {
		return fmt.Errorf("publishing %s: %w", event.Subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("nats drain failed")
	}
}

// Nop discards every event. It is used when NATS_URL is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() {}
