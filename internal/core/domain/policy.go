package domain

import "time"

// DefaultBlockMessage is shown to the user when a message is blocked and the
// policy service did not supply its own text.
const DefaultBlockMessage = "Передача заблокирована. Обратитесь к администратору."

// DlpPolicy is the standing process-wide configuration fetched from the
// policy service at client startup.
type DlpPolicy struct {
	// IsBlockIfOffline decides the verdict when the policy service cannot
	// confirm a submission in time: block (true) or allow (false).
	IsBlockIfOffline bool `json:"isBlockIfOffline"`

	// BlockMessage is the user-facing text shown for a blocked message.
	BlockMessage string `json:"blockMessage"`

	// Telegram enables interception for this client surface at all.
	Telegram bool `json:"telegram"`
}

// DefaultPolicy is the built-in fallback used when no policy has ever been
// fetched successfully.
func DefaultPolicy() DlpPolicy {
	return DlpPolicy{
		IsBlockIfOffline: true,
		BlockMessage:     DefaultBlockMessage,
		Telegram:         true,
	}
}

// AuditEntry is one row of the local audit journal: what was submitted and
// how the submission resolved.
type AuditEntry struct {
	ID        string
	MessageID string
	Direction Direction
	ChatID    string
	ChatType  ChatType
	Blocked   bool
	Outcome   string
	CreatedAt time.Time
}

// Submission outcomes recorded in the audit journal and metrics.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
)

// BlockEvent is published when a message is blocked, for SIEM consumers.
type BlockEvent struct {
	MessageID string    `json:"messageId"`
	ChatID    string    `json:"chatId"`
	Direction Direction `json:"direction"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blockedAt"`
}

// Block reasons carried on published block events.
const (
	BlockReasonVerdict = "verdict"
	BlockReasonOffline = "offline_fallback"
)
