package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/npdirect/npdirect/internal/auth"
	"github.com/npdirect/npdirect/internal/handler/dto"
	"github.com/npdirect/npdirect/internal/metrics"
)

// LoginService runs the magic-link flow.
type LoginService interface {
	StartLogin(ctx context.Context, email, baseURL string) error
	VerifyLogin(ctx context.Context, token string) (string, string, error)
	Logout(ctx context.Context, token string) error
}

// LoginHandler handles the passwordless login endpoints.
type LoginHandler struct {
	svc     LoginService
	baseURL *BaseURLResolver
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(svc LoginService, baseURL *BaseURLResolver, logger *slog.Logger, recorder metrics.Recorder) *LoginHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LoginHandler{
		svc:     svc,
		baseURL: baseURL,
		logger:  logger.With("handler", "login"),
		metrics: recorder,
	}
}

// Start handles POST /auth/login.
// Responds identically whether or not the email was already registered.
func (h *LoginHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	err := h.svc.StartLogin(r.Context(), email, h.baseURL.Resolve(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "A valid email address is required")
			return
		}
		h.logger.Error("login start failed",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestID(r)),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not start login")
		return
	}

	h.metrics.IncLoginStarted()
	writeJSON(w, http.StatusOK, dto.LoginResponse{Sent: true})
}

// Verify handles GET /auth/verify?token=...
func (h *LoginHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "token is required")
		return
	}

	session, userID, err := h.svc.VerifyLogin(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Link is invalid or expired")
			return
		}
		h.logger.Error("login verify failed",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestID(r)),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not verify login")
		return
	}

	h.metrics.IncLoginVerified()
	writeJSON(w, http.StatusOK, dto.VerifyResponse{Token: session, UserID: userID})
}

// Logout handles POST /auth/logout.
func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			h.logger.Warn("logout failed", slog.String("error", err.Error()))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
