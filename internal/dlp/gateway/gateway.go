// Package gateway orchestrates DLP interception for the three message
// lifecycle events: an outgoing send, a forward batch, and a persisted
// message. Every entry point returns a definite "block this message" boolean
// and never an error; an auditing subsystem must not be able to crash or
// hang the send path of a messaging client.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	errs "github.com/lueurxax/telegram-dlp-gateway/internal/core/errors"
	"github.com/lueurxax/telegram-dlp-gateway/internal/core/ports"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/normalizer"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/policystate"
	"github.com/lueurxax/telegram-dlp-gateway/internal/platform/observability"
)

// Gateway is the public surface of the DLP subsystem.
type Gateway struct {
	normalizer *normalizer.Normalizer
	service    ports.PolicyService
	state      *policystate.State
	audit      ports.AuditJournal
	events     ports.BlockPublisher
	logger     *zerolog.Logger
}

// Option configures optional gateway infrastructure.
type Option func(*Gateway)

// WithAuditJournal enables the local audit trail.
func WithAuditJournal(journal ports.AuditJournal) Option {
	return func(g *Gateway) { g.audit = journal }
}

// WithBlockPublisher enables block-event publishing.
func WithBlockPublisher(publisher ports.BlockPublisher) Option {
	return func(g *Gateway) { g.events = publisher }
}

func New(n *normalizer.Normalizer, service ports.PolicyService, state *policystate.State, logger *zerolog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		normalizer: n,
		service:    service,
		state:      state,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// LoadPolicy fetches the standing policy and publishes it into the policy
// state cell. It always yields a usable policy: either the freshly fetched
// one or the absorbed fallback.
func (g *Gateway) LoadPolicy(ctx context.Context) domain.DlpPolicy {
	policy := g.service.FetchPolicy(ctx)
	g.state.Set(policy)

	g.logger.Info().
		Bool("block_if_offline", policy.IsBlockIfOffline).
		Bool("telegram", policy.Telegram).
		Msg("dlp policy loaded")

	return policy
}

// InterceptOutgoing evaluates a message about to be sent. Returns true when
// the message must be blocked. If the owner or the destination chat cannot
// be resolved locally, the message is allowed without a network call.
func (g *Gateway) InterceptOutgoing(ctx context.Context, ownerID, chatID string, draft domain.Draft) bool {
	if !g.state.Current().Telegram {
		return false
	}

	record, err := g.normalizer.Outgoing(ctx, ownerID, chatID, draft)
	if err != nil {
		g.failOpen(err, "outgoing")

		return false
	}

	return g.submit(ctx, record)
}

// InterceptForward evaluates a batch of messages being forwarded. Each
// record is submitted independently and concurrently; the batch is blocked
// iff at least one submission is. A slow item delays only the batch's
// completion, never the resolution of its siblings.
func (g *Gateway) InterceptForward(ctx context.Context, ownerID, toChatID, fromChatID string, messages []domain.Message) bool {
	if !g.state.Current().Telegram {
		return false
	}

	records, err := g.normalizer.Forward(ctx, ownerID, toChatID, fromChatID, messages)
	if err != nil {
		g.failOpen(err, "forward")

		return false
	}

	verdicts := make([]bool, len(records))

	var wg sync.WaitGroup

	for i, record := range records {
		wg.Add(1)

		go func(i int, record *domain.MessageRecord) {
			defer wg.Done()

			verdicts[i] = g.submit(ctx, record)
		}(i, record)
	}

	wg.Wait()

	for _, blocked := range verdicts {
		if blocked {
			return true
		}
	}

	return false
}

// RecordDelivered submits an already-persisted message for audit logging.
// The work runs as its own task; the returned channel yields the verdict
// exactly once for callers that want to react, and may be ignored by the
// common fire-and-forget caller.
func (g *Gateway) RecordDelivered(ctx context.Context, ownerID string, message domain.Message) <-chan bool {
	done := make(chan bool, 1)

	// The submission must survive the caller's request scope; only values
	// travel over from the incoming context.
	ctx = context.WithoutCancel(ctx)

	go func() {
		if !g.state.Current().Telegram {
			done <- false

			return
		}

		record, err := g.normalizer.Delivered(ctx, ownerID, message)
		if err != nil {
			g.failOpen(err, "delivered")
			done <- false

			return
		}

		done <- g.submit(ctx, record)
	}()

	return done
}

// submit runs one record through the policy service and converts the outcome
// into a verdict. A timeout is the single case where local policy, not the
// remote response, decides: the standing IsBlockIfOffline flag applies.
func (g *Gateway) submit(ctx context.Context, record *domain.MessageRecord) bool {
	blocked, err := g.service.SubmitRecord(ctx, record)

	outcome := domain.OutcomeConfirmed
	reason := domain.BlockReasonVerdict

	switch {
	case err == nil:
	case errs.Is(err, errs.ErrSubmitTimeout):
		blocked = g.state.Current().IsBlockIfOffline
		outcome = domain.OutcomeTimeout
		reason = domain.BlockReasonOffline
	default:
		g.logger.Warn().Err(err).Str("message_id", record.MessageID).Msg("submission failed, allowing message")

		blocked = false
		outcome = domain.OutcomeFailed
	}

	if blocked {
		observability.Verdicts.WithLabelValues(observability.VerdictBlock).Inc()
	} else {
		observability.Verdicts.WithLabelValues(observability.VerdictAllow).Inc()
	}

	g.recordAudit(ctx, record, blocked, outcome)

	if blocked {
		g.publishBlocked(ctx, record, reason)
	}

	return blocked
}

func (g *Gateway) recordAudit(ctx context.Context, record *domain.MessageRecord, blocked bool, outcome string) {
	if g.audit == nil {
		return
	}

	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		MessageID: record.MessageID,
		Direction: record.Direction,
		ChatID:    record.ChatID,
		ChatType:  record.ChatType,
		Blocked:   blocked,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}

	if err := g.audit.SaveAudit(ctx, entry); err != nil {
		g.logger.Warn().Err(err).Str("message_id", record.MessageID).Msg("failed to save audit entry")
	}
}

func (g *Gateway) publishBlocked(ctx context.Context, record *domain.MessageRecord, reason string) {
	if g.events == nil {
		return
	}

	event := domain.BlockEvent{
		MessageID: record.MessageID,
		ChatID:    record.ChatID,
		Direction: record.Direction,
		Reason:    reason,
		BlockedAt: time.Now().UTC(),
	}

	if err := g.events.PublishBlocked(ctx, event); err != nil {
		g.logger.Warn().Err(err).Str("message_id", record.MessageID).Msg("failed to publish block event")
	}
}

func (g *Gateway) failOpen(err error, shape string) {
	g.logger.Debug().Err(err).Str("shape", shape).Msg("record not built, allowing message")
}
