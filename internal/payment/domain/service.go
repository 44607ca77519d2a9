package domain

import (
	"context"
	"errors"
	"net/http"
)

// Service ingests raw provider webhooks: verify, normalize, gate on
// the idempotency ledger, then hand off to booking reconciliation.
type Service interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}

// WebhookAdapter translates one provider's webhook dialect. Verify
// authenticates the raw payload; Parse maps it onto the canonical
// event, returning ErrEventIgnored for event types we don't act on.
type WebhookAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*WebhookEvent, error)
}

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
)
