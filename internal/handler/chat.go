package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/npdirect/npdirect/internal/auth"
	"github.com/npdirect/npdirect/internal/handler/dto"
	"github.com/npdirect/npdirect/internal/metrics"
	"github.com/npdirect/npdirect/internal/model"
	"github.com/npdirect/npdirect/internal/repository"
)

// maxHistoryMessages caps the replayed conversation history.
const maxHistoryMessages = 50

// CreditSpender performs the server-side guarded decrement.
type CreditSpender interface {
	SpendCredit(ctx context.Context, userID string) (int, error)
}

// Responder produces a Santa reply for a conversation turn.
type Responder interface {
	Respond(ctx context.Context, history []model.Message) (model.SantaReply, error)
}

// ChatHandler handles conversation turns. Each turn spends exactly one
// credit before the simulator runs; the balance check and the decrement
// are one conditional update in the store, so concurrent turns cannot
// overdraw.
type ChatHandler struct {
	credits CreditSpender
	santa   Responder
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(credits CreditSpender, santa Responder, logger *slog.Logger, recorder metrics.Recorder) *ChatHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatHandler{
		credits: credits,
		santa:   santa,
		logger:  logger.With("handler", "chat"),
		metrics: recorder,
	}
}

// Turn handles POST /api/v1/chat.
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if len(req.History) == 0 {
		writeError(w, http.StatusBadRequest, "EMPTY_HISTORY", "history must contain at least one message")
		return
	}
	if len(req.History) > maxHistoryMessages {
		req.History = req.History[len(req.History)-maxHistoryMessages:]
	}

	userID := auth.UserIDFromContext(r.Context())

	balance, err := h.credits.SpendCredit(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			h.metrics.IncInsufficientCredits()
			writeError(w, http.StatusPaymentRequired, "INSUFFICIENT_CREDITS", "You need more magic credits")
			return
		}
		h.logger.Error("credit spend failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("request_id", getRequestID(r)),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not process the turn")
		return
	}
	h.metrics.IncCreditSpent()

	reply, err := h.santa.Respond(r.Context(), req.History)
	if err != nil {
		// The credit is already spent; the client keeps its receipt of
		// the new balance either way.
		h.logger.Error("simulator failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Santa is unavailable")
		return
	}

	turnID := ulid.Make().String()
	h.metrics.ObserveChatTurnDuration(time.Since(start))
	h.logger.Info("chat turn served",
		slog.String("user_id", userID),
		slog.String("turn_id", turnID),
		slog.Int("balance", balance),
	)

	writeJSON(w, http.StatusOK, dto.ChatResponse{
		Text:    reply.Text,
		Video:   reply.Video,
		Credits: balance,
		TurnID:  turnID,
	})
}
