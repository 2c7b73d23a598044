package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v76"

	"github.com/npdirect/npdirect/internal/handler/dto"
	"github.com/npdirect/npdirect/internal/metrics"
	"github.com/npdirect/npdirect/internal/payments"
)

// maxWebhookBody caps the webhook payload size. Stripe events are small;
// anything larger is not worth buffering.
const maxWebhookBody = 1 << 20

// EventVerifier verifies and interprets provider webhook payloads.
type EventVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error)
	ExtractGrant(event stripe.Event) (payments.CompletedGrant, bool, error)
}

// GrantApplier applies a credit grant exactly once per event ID.
type GrantApplier interface {
	ApplyGrantEvent(ctx context.Context, eventID, eventType, userID string, credits int) (int, bool, error)
}

// WebhookHandler receives asynchronous payment confirmations.
// The signature is the sole authentication on this route: nothing in
// the body is trusted before verification succeeds.
type WebhookHandler struct {
	verifier EventVerifier
	store    GrantApplier
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(verifier EventVerifier, store GrantApplier, logger *slog.Logger, recorder metrics.Recorder) *WebhookHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WebhookHandler{
		verifier: verifier,
		store:    store,
		logger:   logger.With("handler", "webhook"),
		metrics:  recorder,
	}
}

// Receive handles POST /webhooks/stripe.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
		return
	}

	event, err := h.verifier.VerifyEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.metrics.IncWebhookEvent(metrics.WebhookRejected)
		h.logger.Warn("webhook signature verification failed",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestID(r)),
		)
		writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Signature verification failed")
		return
	}

	grant, ok, err := h.verifier.ExtractGrant(event)
	if err != nil {
		h.metrics.IncWebhookEvent(metrics.WebhookRejected)
		h.logger.Warn("webhook payload malformed",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID),
		)
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Malformed event payload")
		return
	}
	if !ok {
		// Verified but not a grant-bearing event: acknowledge and move on.
		h.metrics.IncWebhookEvent(metrics.WebhookIgnored)
		h.logger.Info("webhook event ignored",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
		)
		writeJSON(w, http.StatusOK, dto.WebhookResponse{Received: true})
		return
	}

	balance, applied, err := h.store.ApplyGrantEvent(r.Context(), grant.EventID, string(event.Type), grant.UserID, grant.Credits)
	if err != nil {
		// Verified but not applied. Fail the delivery so the provider
		// redelivers; the event ledger makes the retry safe.
		h.metrics.IncWebhookEvent(metrics.WebhookFailed)
		h.logger.Error("credit grant failed",
			slog.String("error", err.Error()),
			slog.String("event_id", grant.EventID),
			slog.String("user_id", grant.UserID),
		)
		writeError(w, http.StatusInternalServerError, "GRANT_FAILED", "Could not apply credit grant")
		return
	}

	if applied {
		h.metrics.IncWebhookEvent(metrics.WebhookApplied)
		h.metrics.AddCreditsGranted(grant.Credits)
		h.logger.Info("credits granted",
			slog.String("event_id", grant.EventID),
			slog.String("user_id", grant.UserID),
			slog.Int("credits", grant.Credits),
			slog.Int("balance", balance),
		)
	} else {
		h.metrics.IncWebhookEvent(metrics.WebhookDuplicate)
		h.logger.Info("duplicate webhook delivery skipped",
			slog.String("event_id", grant.EventID),
			slog.String("user_id", grant.UserID),
			slog.Int("balance", balance),
		)
	}

	writeJSON(w, http.StatusOK, dto.WebhookResponse{Received: true})
}
