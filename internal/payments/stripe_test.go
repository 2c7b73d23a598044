package payments

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func testClient() *Client {
	return NewClient("sk_test_123", testWebhookSecret, Pack{Credits: 5, PriceCents: 500})
}

// signedPayload builds a payload with a valid Stripe-Signature header.
func signedPayload(t *testing.T, body []byte) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, body, testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func checkoutEventBody(t *testing.T, eventID, userID, credits string) []byte {
	t.Helper()
	session := map[string]any{
		"id":       "cs_test_123",
		"metadata": map[string]string{},
	}
	meta := session["metadata"].(map[string]string)
	if userID != "" {
		meta["userId"] = userID
	}
	if credits != "" {
		meta["creditsToAdd"] = credits
	}
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}

	event := map[string]any{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]any{"object": json.RawMessage(raw)},
	}
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func TestVerifyEvent_ValidSignature(t *testing.T) {
	c := testClient()
	body := checkoutEventBody(t, "evt_1", "u1", "5")

	event, err := c.VerifyEvent(body, signedPayload(t, body))
	if err != nil {
		t.Fatalf("VerifyEvent() error = %v", err)
	}
	if event.ID != "evt_1" {
		t.Errorf("event.ID = %q, want evt_1", event.ID)
	}
}

func TestVerifyEvent_BadSignature(t *testing.T) {
	c := testClient()
	body := checkoutEventBody(t, "evt_1", "u1", "5")

	if _, err := c.VerifyEvent(body, "t=123,v1=deadbeef"); err == nil {
		t.Fatal("VerifyEvent() expected error for bad signature")
	}
}

func TestVerifyEvent_TamperedBody(t *testing.T) {
	c := testClient()
	body := checkoutEventBody(t, "evt_1", "u1", "5")
	header := signedPayload(t, body)

	tampered := checkoutEventBody(t, "evt_1", "attacker", "9999")
	if _, err := c.VerifyEvent(tampered, header); err == nil {
		t.Fatal("VerifyEvent() expected error for tampered body")
	}
}

func TestExtractGrant(t *testing.T) {
	c := testClient()

	tests := []struct {
		name        string
		eventType   string
		userID      string
		credits     string
		wantOK      bool
		wantCredits int
	}{
		{"completed with credits", "checkout.session.completed", "u1", "5", true, 5},
		{"completed custom credits", "checkout.session.completed", "u1", "10", true, 10},
		{"missing credits defaults to pack", "checkout.session.completed", "u1", "", true, 5},
		{"unparseable credits defaults to pack", "checkout.session.completed", "u1", "lots", true, 5},
		{"negative credits defaults to pack", "checkout.session.completed", "u1", "-3", true, 5},
		{"missing user id ignored", "checkout.session.completed", "", "5", false, 0},
		{"other event type ignored", "payment_intent.created", "u1", "5", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := checkoutEventBody(t, "evt_x", tt.userID, tt.credits)

			var event stripe.Event
			if err := json.Unmarshal(body, &event); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			event.Type = stripe.EventType(tt.eventType)

			grant, ok, err := c.ExtractGrant(event)
			if err != nil {
				t.Fatalf("ExtractGrant() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ExtractGrant() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if grant.UserID != tt.userID {
				t.Errorf("grant.UserID = %q, want %q", grant.UserID, tt.userID)
			}
			if grant.Credits != tt.wantCredits {
				t.Errorf("grant.Credits = %d, want %d", grant.Credits, tt.wantCredits)
			}
			if grant.EventID != "evt_x" {
				t.Errorf("grant.EventID = %q, want evt_x", grant.EventID)
			}
		})
	}
}

func TestPackName(t *testing.T) {
	p := Pack{Credits: 5, PriceCents: 500}
	if p.Name() != "5 Santa Video Credits" {
		t.Errorf("Name() = %q", p.Name())
	}
}
