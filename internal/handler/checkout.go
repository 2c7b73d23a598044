package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/npdirect/npdirect/internal/auth"
	"github.com/npdirect/npdirect/internal/handler/dto"
	"github.com/npdirect/npdirect/internal/metrics"
)

// CheckoutCreator creates hosted payment sessions.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, userID, baseURL string) (string, error)
}

// CheckoutHandler handles payment-session creation.
type CheckoutHandler struct {
	payments CheckoutCreator
	baseURL  *BaseURLResolver
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(payments CheckoutCreator, baseURL *BaseURLResolver, logger *slog.Logger, recorder metrics.Recorder) *CheckoutHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CheckoutHandler{
		payments: payments,
		baseURL:  baseURL,
		logger:   logger.With("handler", "checkout"),
		metrics:  recorder,
	}
}

// Create handles POST /api/v1/checkout.
// The body's userId must match the authenticated session; the amount
// and line item are fixed server-side, never client-controlled.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	// An empty body is fine; the session user is the default.
	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if req.UserID != "" && req.UserID != userID {
		writeError(w, http.StatusForbidden, "USER_MISMATCH", "userId does not match the session")
		return
	}

	base := h.baseURL.Resolve(r)

	url, err := h.payments.CreateCheckoutSession(r.Context(), userID, base)
	if err != nil {
		h.metrics.IncCheckoutFailed()
		h.logger.Error("checkout session creation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("request_id", getRequestID(r)),
		)
		writeError(w, http.StatusBadGateway, "PAYMENTS_UNAVAILABLE", "Could not start checkout")
		return
	}

	h.metrics.IncCheckoutCreated()
	h.logger.Info("checkout session created",
		slog.String("user_id", userID),
		slog.String("base_url", base),
	)

	writeJSON(w, http.StatusOK, dto.CheckoutResponse{URL: url})
}
