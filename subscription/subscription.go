package subscription

import (
	"fmt"
	"net/url"
	"time"
)

/* Subscription represents a registered delivery target
 * Uses value semantics as it represents data, not behavior
 */
type Subscription struct {
	ID         string
	TargetURL  string
	Secret     string
	EventTypes []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks that the subscription has a usable delivery target.
func (s Subscription) Validate() error {
	if s.TargetURL == "" {
		return fmt.Errorf("target_url cannot be empty")
	}
	u, err := url.ParseRequestURI(s.TargetURL)
	if err != nil {
		return fmt.Errorf("parsing target_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target_url must be http or https: %s", s.TargetURL)
	}
	if u.Host == "" {
		return fmt.Errorf("target_url must have a host: %s", s.TargetURL)
	}
	return nil
}

// Filters reports whether the subscription restricts delivery by event type.
// An empty allow-list accepts everything.
func (s Subscription) Filters() bool {
	return len(s.EventTypes) > 0
}

// Accepts reports whether the given event type passes the allow-list.
func (s Subscription) Accepts(eventType string) bool {
	if !s.Filters() {
		return true
	}
	for _, et := range s.EventTypes {
		if et == eventType {
			return true
		}
	}
	return false
}
