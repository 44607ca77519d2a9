package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	paymentdomain "github.com/smallbiznis/reservo/internal/payment/domain"
)

const testSecret = "whsec_test"

func buildSignatureHeader(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s.%s", timestamp, string(payload))))
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	tests := []struct {
		name    string
		secret  string
		header  string
		wantErr bool
	}{
		{
			name:   "valid signature",
			secret: testSecret,
			header: buildSignatureHeader(testSecret, "1700000000", payload),
		},
		{
			name:   "multiple v1 signatures one valid",
			secret: testSecret,
			header: "t=1700000000,v1=deadbeef," + buildSignatureHeader(testSecret, "1700000000", payload)[2:],
		},
		{
			name:    "wrong secret",
			secret:  testSecret,
			header:  buildSignatureHeader("whsec_other", "1700000000", payload),
			wantErr: true,
		},
		{
			name:    "tampered timestamp",
			secret:  testSecret,
			header:  "t=1700000099," + buildSignatureHeader(testSecret, "1700000000", payload)[13:],
			wantErr: true,
		},
		{
			name:    "stale timestamp",
			secret:  testSecret,
			header:  buildSignatureHeader(testSecret, "1699999000", payload),
			wantErr: true,
		},
		{
			name:    "timestamp from the future",
			secret:  testSecret,
			header:  buildSignatureHeader(testSecret, "1700000400", payload),
			wantErr: true,
		},
		{
			name:    "missing header",
			secret:  testSecret,
			header:  "",
			wantErr: true,
		},
		{
			name:    "garbage header",
			secret:  testSecret,
			header:  "not-a-signature",
			wantErr: true,
		},
		{
			name:    "no secret configured",
			secret:  "",
			header:  buildSignatureHeader(testSecret, "1700000000", payload),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := New(tt.secret)
			adapter.now = func() time.Time { return time.Unix(1700000000, 0) }
			headers := http.Header{}
			if tt.header != "" {
				headers.Set("Stripe-Signature", tt.header)
			}
			err := adapter.Verify(context.Background(), payload, headers)
			if tt.wantErr {
				if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
					t.Fatalf("expected ErrInvalidSignature, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid signature, got %v", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantErr     error
		wantType    string
		wantSession string
	}{
		{
			name: "checkout completed",
			payload: `{"id":"evt_1","type":"checkout.session.completed","created":1700000000,
				"data":{"object":{"id":"cs_test_1","created":1699999000}}}`,
			wantType:    paymentdomain.EventTypeSessionCompleted,
			wantSession: "cs_test_1",
		},
		{
			name: "checkout expired",
			payload: `{"id":"evt_2","type":"checkout.session.expired",
				"data":{"object":{"id":"cs_test_2"}}}`,
			wantType:    paymentdomain.EventTypeSessionExpired,
			wantSession: "cs_test_2",
		},
		{
			name:    "unhandled event type",
			payload: `{"id":"evt_3","type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`,
			wantErr: paymentdomain.ErrEventIgnored,
		},
		{
			name:    "missing event id",
			payload: `{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_1"}}}`,
			wantErr: paymentdomain.ErrInvalidEvent,
		},
		{
			name:    "missing session id",
			payload: `{"id":"evt_4","type":"checkout.session.completed","data":{"object":{}}}`,
			wantErr: paymentdomain.ErrInvalidEvent,
		},
		{
			name:    "malformed json",
			payload: `{`,
			wantErr: paymentdomain.ErrInvalidPayload,
		},
	}

	adapter := New(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := adapter.Parse(context.Background(), []byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if event.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, event.Type)
			}
			if event.SessionRef != tt.wantSession {
				t.Fatalf("expected session %s, got %s", tt.wantSession, event.SessionRef)
			}
			if event.Provider != "stripe" {
				t.Fatalf("expected provider stripe, got %s", event.Provider)
			}
		})
	}
}

func TestParseSucceededMapping(t *testing.T) {
	adapter := New(testSecret)

	completed, err := adapter.Parse(context.Background(),
		[]byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`))
	if err != nil {
		t.Fatalf("parse completed: %v", err)
	}
	if !completed.Succeeded() {
		t.Fatalf("completed session must report success")
	}

	expired, err := adapter.Parse(context.Background(),
		[]byte(`{"id":"evt_2","type":"checkout.session.expired","data":{"object":{"id":"cs_2"}}}`))
	if err != nil {
		t.Fatalf("parse expired: %v", err)
	}
	if expired.Succeeded() {
		t.Fatalf("expired session must not report success")
	}
}
