// Package events publishes block events to NATS for SIEM consumers. The
// publisher is optional infrastructure: deployments without a broker simply
// run the gateway without it.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// Publisher emits one NATS message per blocked submission.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zerolog.Logger
}

func Connect(url, subject string, logger *zerolog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info().Str("url", url).Str("subject", subject).Msg("connected to nats")

	return &Publisher{conn: conn, subject: subject, logger: logger}, nil
}

// PublishBlocked emits a block event. Publishing is fire-and-forget at the
// broker level; a failure is reported to the caller for logging only.
func (p *Publisher) PublishBlocked(_ context.Context, event domain.BlockEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal block event: %w", err)
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish block event: %w", err)
	}

	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}
