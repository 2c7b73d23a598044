// Package dto defines request and response shapes for the HTTP API.
package dto

import "github.com/npdirect/npdirect/internal/model"

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// LoginRequest starts a magic-link login.
type LoginRequest struct {
	Email string `json:"email"`
}

// LoginResponse acknowledges a magic-link login.
type LoginResponse struct {
	Sent bool `json:"sent"`
}

// VerifyResponse is the result of exchanging a magic-link token.
type VerifyResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// CheckoutRequest creates a payment session.
type CheckoutRequest struct {
	UserID string `json:"userId"`
}

// CheckoutResponse carries the hosted payment redirect.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a provider notification.
type WebhookResponse struct {
	Received bool `json:"received"`
}

// CreditsResponse reports a user's balance.
type CreditsResponse struct {
	Credits int `json:"credits"`
}

// ChatRequest is one conversation turn.
type ChatRequest struct {
	History []model.Message `json:"history"`
}

// ChatResponse is the simulated Santa reply, plus the balance left
// after the turn so the client can re-sync without another read.
type ChatResponse struct {
	Text    string `json:"text"`
	Video   string `json:"video"`
	Credits int    `json:"credits"`
	TurnID  string `json:"turnId"`
}
