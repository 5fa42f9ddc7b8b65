package delivery

import (
	"fmt"
	"time"
)

/* Outcome classifies a single delivery attempt.
 * AttemptFailed attempts may be retried; AttemptSucceeded and
 * AttemptPermanentlyFailed are terminal, and the ledger holds exactly
 * one terminal attempt per webhook, always the last one.
 */
type Outcome int

const (
	AttemptSucceeded Outcome = iota + 1
	AttemptFailed
	AttemptPermanentlyFailed
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case AttemptSucceeded:
		return "succeeded"
	case AttemptFailed:
		return "failed_attempt"
	case AttemptPermanentlyFailed:
		return "permanently_failed"
	default:
		return "unknown"
	}
}

// NewOutcome creates an Outcome from a string
func NewOutcome(str string) Outcome {
	switch str {
	case "succeeded":
		return AttemptSucceeded
	case "failed_attempt":
		return AttemptFailed
	case "permanently_failed":
		return AttemptPermanentlyFailed
	default:
		return AttemptFailed
	}
}

// Validate checks if the outcome is valid
func (o Outcome) Validate() error {
	if o < AttemptSucceeded || o > AttemptPermanentlyFailed {
		return fmt.Errorf("invalid outcome: %d", o)
	}
	return nil
}

// IsTerminal returns true if no further attempts follow this outcome
func (o Outcome) IsTerminal() bool {
	return o == AttemptSucceeded || o == AttemptPermanentlyFailed
}

/* Attempt is one execution record of a delivery try.
 * Appended once, never mutated or reordered. Numbers form a dense
 * 1-based sequence per webhook, derived from the job system's counter.
 */
type Attempt struct {
	ID          string
	WebhookID   string
	Number      int
	AttemptedAt time.Time
	Outcome     Outcome
	// HTTPStatus is zero when no response was received.
	HTTPStatus  int
	ErrorDetail string
	// NextAttemptAt is set only on a failed attempt with retries remaining.
	NextAttemptAt *time.Time
}
