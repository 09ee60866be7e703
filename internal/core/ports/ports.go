// Package ports provides domain-centric interfaces for the collaborators the
// gateway consumes from the surrounding client and for its own optional
// infrastructure. Business logic stays independent of how the host client
// stores its state or where audit rows end up.
package ports

import (
	"context"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// Directory looks up already-loaded client state by id. Lookups are pure:
// the gateway never mutates the host client's entity store. A lookup that
// finds nothing returns (nil, nil); errors are reserved for broken backends.
type Directory interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
	ChatByID(ctx context.Context, id string) (*domain.Chat, error)
}

// MediaFetcher resolves downloadable media to bytes by hash, cache first with
// a remote fallback.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, ref domain.MediaRef) ([]byte, error)
}

// PolicyService is the remote policy authority.
type PolicyService interface {
	// FetchPolicy never fails: on any transport or decode problem it yields
	// the last known policy, or the built-in default when none exists.
	FetchPolicy(ctx context.Context) domain.DlpPolicy

	// SubmitRecord submits one record and resolves to a verdict. A timeout is
	// reported as errs.ErrSubmitTimeout so the caller can apply the
	// offline-fallback rule; all other failures fail open.
	SubmitRecord(ctx context.Context, record *domain.MessageRecord) (bool, error)
}

// AuditJournal persists a local trail of submissions. Best effort: a write
// failure never influences a verdict.
type AuditJournal interface {
	SaveAudit(ctx context.Context, entry domain.AuditEntry) error
}

// BlockPublisher emits block events for external consumers. Best effort,
// like the audit journal.
type BlockPublisher interface {
	PublishBlocked(ctx context.Context, event domain.BlockEvent) error
}
