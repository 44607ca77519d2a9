package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord is the idempotency ledger for inbound payment webhooks.
// (provider, provider_event_id) is unique; ProcessedAt is set only
// after the event's effects have been committed.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	TenantID        snowflake.ID   `json:"tenant_id" gorm:"not null;index"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	SessionRef      string         `json:"session_ref" gorm:"type:text;not null;index"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

const (
	EventTypeSessionCompleted = "session_completed"
	EventTypeSessionExpired   = "session_expired"
)

// WebhookEvent is the canonical payment event parsed by adapters.
type WebhookEvent struct {
	Provider        string
	ProviderEventID string
	// SessionRef is the gateway checkout session this event settles.
	SessionRef string
	Type       string
	TenantID   snowflake.ID
	OccurredAt time.Time
	RawPayload []byte
}

// Succeeded reports whether the event confirms payment.
func (e WebhookEvent) Succeeded() bool {
	return e.Type == EventTypeSessionCompleted
}
