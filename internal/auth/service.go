package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/npdirect/npdirect/internal/cache"
	"github.com/npdirect/npdirect/internal/model"
)

// Service errors.
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ProfileStore is the subset of the repository the auth service needs.
type ProfileStore interface {
	GetOrCreateProfile(ctx context.Context, email string) (*model.Profile, error)
}

// TokenStore is the subset of the cache the auth service needs.
type TokenStore interface {
	StoreLoginToken(ctx context.Context, tokenDigest, userID string, ttl time.Duration) error
	ConsumeLoginToken(ctx context.Context, tokenDigest string) (string, error)
	StoreSession(ctx context.Context, tokenDigest, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenDigest string) (string, error)
	DeleteSession(ctx context.Context, tokenDigest string) error
}

// Service implements the magic-link login flow: a single-use login
// token emailed to the parent, exchanged for a bearer session token.
type Service struct {
	profiles   ProfileStore
	tokens     TokenStore
	mailer     Mailer
	logger     *slog.Logger
	loginTTL   time.Duration
	sessionTTL time.Duration
}

// NewService creates a new auth Service.
func NewService(profiles ProfileStore, tokens TokenStore, mailer Mailer, logger *slog.Logger, loginTTL, sessionTTL time.Duration) *Service {
	return &Service{
		profiles:   profiles,
		tokens:     tokens,
		mailer:     mailer,
		logger:     logger.With("component", "auth"),
		loginTTL:   loginTTL,
		sessionTTL: sessionTTL,
	}
}

// StartLogin finds or creates the profile for an email and sends it a
// magic link rooted at baseURL. The caller gets no signal whether the
// email was already registered.
func (s *Service) StartLogin(ctx context.Context, email, baseURL string) error {
	if !validEmail(email) {
		return ErrInvalidEmail
	}

	profile, err := s.profiles.GetOrCreateProfile(ctx, email)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}

	token, err := GenerateToken(KindLogin)
	if err != nil {
		return fmt.Errorf("generate login token: %w", err)
	}

	if err := s.tokens.StoreLoginToken(ctx, HashToken(token), profile.ID, s.loginTTL); err != nil {
		return fmt.Errorf("store login token: %w", err)
	}

	link := baseURL + "/auth/verify?token=" + url.QueryEscape(token)
	if err := s.mailer.SendMagicLink(ctx, email, link); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}

	s.logger.Info("login started", slog.String("user_id", profile.ID))
	return nil
}

// VerifyLogin consumes a magic-link token and mints a session token.
// Returns the session token and the user ID it authenticates.
func (s *Service) VerifyLogin(ctx context.Context, token string) (string, string, error) {
	kind, err := ParseToken(token)
	if err != nil || kind != KindLogin {
		return "", "", ErrInvalidToken
	}

	userID, err := s.tokens.ConsumeLoginToken(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, cache.ErrTokenNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", fmt.Errorf("consume login token: %w", err)
	}

	session, err := GenerateToken(KindSession)
	if err != nil {
		return "", "", fmt.Errorf("generate session token: %w", err)
	}

	if err := s.tokens.StoreSession(ctx, HashToken(session), userID, s.sessionTTL); err != nil {
		return "", "", fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("login verified", slog.String("user_id", userID))
	return session, userID, nil
}

// Authenticate resolves a session token to a user ID.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	kind, err := ParseToken(token)
	if err != nil || kind != KindSession {
		return "", ErrInvalidToken
	}

	userID, err := s.tokens.GetSession(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, cache.ErrTokenNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	return userID, nil
}

// Logout deletes a session token. Logging out an unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if _, err := ParseToken(token); err != nil {
		return nil
	}
	return s.tokens.DeleteSession(ctx, HashToken(token))
}

// validEmail is a light sanity check; real validation is the mail
// provider's job (the link only works if the inbox receives it).
func validEmail(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	at := -1
	for i, c := range email {
		if c == '@' {
			if at != -1 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(email)-1
}
