package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/npdirect/npdirect/internal/auth"
	"github.com/npdirect/npdirect/internal/handler/dto"
)

// BalanceReader reads a user's credit balance.
type BalanceReader interface {
	GetCredits(ctx context.Context, userID string) (int, error)
}

// CreditsHandler serves balance reads, used by the client to re-sync
// after returning from checkout.
type CreditsHandler struct {
	store  BalanceReader
	logger *slog.Logger
}

// NewCreditsHandler creates a new CreditsHandler.
func NewCreditsHandler(store BalanceReader, logger *slog.Logger) *CreditsHandler {
	return &CreditsHandler{
		store:  store,
		logger: logger.With("handler", "credits"),
	}
}

// Get handles GET /api/v1/credits.
func (h *CreditsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	credits, err := h.store.GetCredits(r.Context(), userID)
	if err != nil {
		h.logger.Error("balance read failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("request_id", getRequestID(r)),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not read balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditsResponse{Credits: credits})
}
