package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/smallbiznis/reservo/internal/events"
)

type capturingEmail struct {
	to      []string
	subject string
	body    string
	err     error
}

func (p *capturingEmail) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	p.to = to
	p.subject = subject
	p.body = htmlBody
	return p.err
}

func testPayload() events.BookingPaidPayload {
	return events.BookingPaidPayload{
		BookingID:    1,
		TenantID:     2,
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		EventDate:    "2026-03-10",
		PackageTitle: "Full Day",
		AddOnTitles:  []string{"Photo Album"},
		Total:        60000,
		Currency:     "USD",
	}
}

func TestSendBookingConfirmation(t *testing.T) {
	provider := &capturingEmail{}
	n := New(Params{Log: zap.NewNop(), Email: provider})

	if err := n.SendBookingConfirmation(context.Background(), testPayload()); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}

	if len(provider.to) != 1 || provider.to[0] != "ada@example.com" {
		t.Fatalf("unexpected recipients: %v", provider.to)
	}
	if provider.subject != "Your booking for 2026-03-10 is confirmed" {
		t.Fatalf("unexpected subject: %s", provider.subject)
	}
	for _, want := range []string{"Ada Lovelace", "2026-03-10", "Full Day", "Photo Album", "60000 USD"} {
		if !strings.Contains(provider.body, want) {
			t.Fatalf("body missing %q:\n%s", want, provider.body)
		}
	}
}

func TestSendBookingConfirmationOmitsEmptyAddOns(t *testing.T) {
	provider := &capturingEmail{}
	n := New(Params{Log: zap.NewNop(), Email: provider})

	payload := testPayload()
	payload.AddOnTitles = nil
	if err := n.SendBookingConfirmation(context.Background(), payload); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}
	if strings.Contains(provider.body, "Add-ons") {
		t.Fatalf("expected add-on section omitted:\n%s", provider.body)
	}
}

func TestSendBookingConfirmationReturnsProviderError(t *testing.T) {
	provider := &capturingEmail{err: errors.New("smtp down")}
	n := New(Params{Log: zap.NewNop(), Email: provider})

	if err := n.SendBookingConfirmation(context.Background(), testPayload()); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestRegisterWiresBus(t *testing.T) {
	provider := &capturingEmail{}
	bus := events.NewBus(zap.NewNop())
	Register(New(Params{Log: zap.NewNop(), Email: provider}), bus)

	bus.PublishBookingPaid(context.Background(), testPayload())

	if provider.subject == "" {
		t.Fatalf("expected confirmation sent via bus subscription")
	}
}
