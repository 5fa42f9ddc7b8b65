package delivery

import "fmt"

/* Status represents the current state of a webhook
 * Transitions are monotonic: Queued -> Succeeded or Queued -> Failed,
 * never backward. A terminal webhook never produces delivery jobs.
 */
type Status int

const (
	Queued Status = iota + 1
	Succeeded
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "queued":
		return Queued
	case "succeeded":
		return Succeeded
	case "failed":
		return Failed
	default:
		return Queued
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Queued || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsTerminal returns true if the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == Succeeded || s == Failed
}
