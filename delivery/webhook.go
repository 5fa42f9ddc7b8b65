package delivery

import "time"

/* Webhook represents one ingested event instance addressed to a
 * subscription. The payload is opaque to the engine: it is stored and
 * delivered as bytes, never interpreted beyond the optional event_type
 * field extracted at ingestion.
 */
type Webhook struct {
	ID             string
	SubscriptionID string
	Payload        []byte
	EventType      string
	IngestedAt     time.Time
	Status         Status
}
