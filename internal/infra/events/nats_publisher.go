package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"workflow-analyst/internal/domain/ports/adapter"
)

var (
	_ adapter.JobEventPublisher = (*NATSPublisher)(nil)
	_ adapter.JobEventPublisher = NopPublisher{}
)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher sends job events to "<prefix>.<status>".
type NATSPublisher struct {
	nc     conn
	prefix string
	log    *zerolog.Logger
}

// Connect dials NATS with reconnect settings suitable for a long-running service.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("workflow-analyst"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func NewNATSPublisher(nc conn, subjectPrefix string, log *zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		nc:     nc,
		prefix: strings.TrimSuffix(subjectPrefix, "."),
		log:    log,
	}
}

func (p *NATSPublisher) Subject(status string) string {
	return p.prefix + "." + status
}

func (p *NATSPublisher) PublishJobEvent(ctx context.Context, ev adapter.JobEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}
	subject := p.Subject(ev.Status)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug().Str("subject", subject).Str("job_id", ev.JobID).Msg("job event published")
	return nil
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishJobEvent(context.Context, adapter.JobEvent) error { return nil }
