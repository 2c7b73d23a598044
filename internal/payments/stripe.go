// Package payments wraps the Stripe API for checkout-session creation
// and webhook verification. Stripe owns the checkout session end to end;
// this package only supplies its creation parameters and reads back the
// completion event.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Metadata keys round-tripped through the checkout session.
const (
	metadataUserID  = "userId"
	metadataCredits = "creditsToAdd"
)

// eventCheckoutCompleted is the only event type this service acts on.
const eventCheckoutCompleted = "checkout.session.completed"

const productImageURL = "https://cdn-icons-png.flaticon.com/512/744/744546.png"

// Pack describes the single credit bundle sold at checkout.
type Pack struct {
	Credits    int
	PriceCents int64
}

// Name is the line-item name shown on the hosted checkout page.
func (p Pack) Name() string {
	return fmt.Sprintf("%d Santa Video Credits", p.Credits)
}

// Client is an injected Stripe API client. It never touches the
// package-global stripe key.
type Client struct {
	api           *client.API
	webhookSecret string
	pack          Pack
}

// NewClient creates a Stripe client with its own API handle.
func NewClient(secretKey, webhookSecret string, pack Pack) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{
		api:           api,
		webhookSecret: webhookSecret,
		pack:          pack,
	}
}

// Pack returns the configured credit bundle.
func (c *Client) Pack() Pack {
	return c.pack
}

// CreateCheckoutSession creates a hosted checkout session for one
// credit pack and returns the redirect URL. baseURL must be
// scheme-qualified with no trailing slash.
func (c *Client) CreateCheckoutSession(ctx context.Context, userID, baseURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(c.pack.Name()),
						Description: stripe.String("Live Video Call with Santa"),
						Images:      stripe.StringSlice([]string{productImageURL}),
					},
					UnitAmount: stripe.Int64(c.pack.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(baseURL + "/?success=true"),
		CancelURL:  stripe.String(baseURL + "/?canceled=true"),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, userID)
	params.AddMetadata(metadataCredits, strconv.Itoa(c.pack.Credits))

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return session.URL, nil
}

// CompletedGrant is the credit grant extracted from a completed
// checkout event.
type CompletedGrant struct {
	EventID string
	UserID  string
	Credits int
}

// VerifyEvent checks the Stripe-Signature header against the webhook
// signing secret and returns the parsed event. The payload must not be
// trusted before this succeeds.
func (c *Client) VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
}

// ExtractGrant pulls the credit grant out of a verified event.
// Returns ok=false for event types this service ignores, or for a
// completed checkout carrying no user ID.
func (c *Client) ExtractGrant(event stripe.Event) (CompletedGrant, bool, error) {
	if event.Type != eventCheckoutCompleted {
		return CompletedGrant{}, false, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return CompletedGrant{}, false, fmt.Errorf("parse checkout session: %w", err)
	}

	userID := session.Metadata[metadataUserID]
	if userID == "" {
		return CompletedGrant{}, false, nil
	}

	// Absent or malformed creditsToAdd falls back to the configured pack
	// size, matching what checkout would have attached.
	credits := c.pack.Credits
	if raw := session.Metadata[metadataCredits]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			credits = parsed
		}
	}

	return CompletedGrant{
		EventID: event.ID,
		UserID:  userID,
		Credits: credits,
	}, true, nil
}
