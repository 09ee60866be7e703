// Package errors provides centralized error definitions for the gateway.
//
// Naming conventions:
//   - Exported errors (Err*): callers check these with errors.Is
//   - Sentinel errors are variables, never inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinels with context
package errors

import "errors"

// Actor resolution errors. A missing actor means the record is never built
// and no network call is made; the caller fails open.
var (
	// ErrOwnerNotResolved indicates the authenticated local user is unknown.
	ErrOwnerNotResolved = errors.New("owner not resolved")

	// ErrChatNotResolved indicates the destination chat is unknown locally.
	ErrChatNotResolved = errors.New("chat not resolved")

	// ErrSourceNotResolved indicates the source chat of a forward is unknown.
	ErrSourceNotResolved = errors.New("source chat not resolved")
)

// Submission errors.
var (
	// ErrSubmitTimeout indicates the policy service did not answer within the
	// submission window; the offline-fallback rule applies.
	ErrSubmitTimeout = errors.New("submission timed out")

	// ErrSubmitRejected indicates the service answered with a non-2xx status.
	ErrSubmitRejected = errors.New("submission rejected")

	// ErrSubmitUnconfirmed indicates a 2xx response whose body did not
	// confirm the submission (success=false or malformed payload).
	ErrSubmitUnconfirmed = errors.New("submission unconfirmed")
)

// Media errors.
var (
	// ErrMediaNotFound indicates media bytes could not be resolved from the
	// cache or the remote store.
	ErrMediaNotFound = errors.New("media not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
