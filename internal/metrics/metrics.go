// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Webhook event outcomes recorded by the confirmation receiver.
const (
	WebhookApplied   = "applied"
	WebhookDuplicate = "duplicate"
	WebhookRejected  = "rejected"
	WebhookIgnored   = "ignored"
	WebhookFailed    = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Checkout metrics
	IncCheckoutCreated()
	IncCheckoutFailed()

	// Webhook / credit grant metrics
	IncWebhookEvent(outcome string)
	AddCreditsGranted(n int)

	// Spend / conversation metrics
	IncCreditSpent()
	IncInsufficientCredits()
	ObserveChatTurnDuration(duration time.Duration)

	// Auth metrics
	IncLoginStarted()
	IncLoginVerified()
}
