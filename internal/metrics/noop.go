package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCheckoutCreated is a no-op.
func (n *NoopRecorder) IncCheckoutCreated() {}

// IncCheckoutFailed is a no-op.
func (n *NoopRecorder) IncCheckoutFailed() {}

// IncWebhookEvent is a no-op.
func (n *NoopRecorder) IncWebhookEvent(outcome string) {}

// AddCreditsGranted is a no-op.
func (n *NoopRecorder) AddCreditsGranted(count int) {}

// IncCreditSpent is a no-op.
func (n *NoopRecorder) IncCreditSpent() {}

// IncInsufficientCredits is a no-op.
func (n *NoopRecorder) IncInsufficientCredits() {}

// ObserveChatTurnDuration is a no-op.
func (n *NoopRecorder) ObserveChatTurnDuration(duration time.Duration) {}

// IncLoginStarted is a no-op.
func (n *NoopRecorder) IncLoginStarted() {}

// IncLoginVerified is a no-op.
func (n *NoopRecorder) IncLoginVerified() {}
