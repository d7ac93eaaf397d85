// Package queue defines message payloads exchanged over the message
// broker, the publisher that emits them, and the background consumer
// that records them.
package queue

// UserEvent is published whenever a user lifecycle mutation is applied
// locally: webhook deliveries, sync-endpoint writes, role changes and
// deletions. It carries enough to audit the change without querying
// the primary database.
type UserEvent struct {
	EventType  string `json:"event_type"`
	UserID     string `json:"user_id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
