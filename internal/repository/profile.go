package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/npdirect/npdirect/internal/model"
)

// Common errors for profile repository operations.
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidCreditAmount = errors.New("credit amount must be positive")
	ErrGrantEventNotFound  = errors.New("grant event not found")
)

// GetProfile retrieves a profile by user ID.
func (r *Repository) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	query := `
		SELECT id, email, credits, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.Credits,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// GetProfileByEmail retrieves a profile by email address.
func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := `
		SELECT id, email, credits, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.ID,
		&p.Email,
		&p.Credits,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return &p, nil
}

// CreateProfile inserts a new profile with a zero balance.
func (r *Repository) CreateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, email, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Email,
		p.Credits,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetOrCreateProfile gets a profile by email or creates one if not found.
// Used by the magic-link login flow.
func (r *Repository) GetOrCreateProfile(ctx context.Context, email string) (*model.Profile, error) {
	existing, err := r.GetProfileByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Profile{
		ID:        uuid.New().String(),
		Email:     email,
		Credits:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.CreateProfile(ctx, p); err != nil {
		// Handle race condition - a concurrent login may have created it
		if errors.Is(err, ErrEmailExists) {
			return r.GetProfileByEmail(ctx, email)
		}
		return nil, err
	}

	return p, nil
}

// GetCredits returns the current balance for a user.
// A missing profile reads as zero, matching how the checkout flow can
// grant credits before the profile ever logged in.
func (r *Repository) GetCredits(ctx context.Context, userID string) (int, error) {
	p, err := r.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return p.Credits, nil
}

// GrantCredits adds n credits to a user's balance atomically, creating
// the profile row if it does not exist. Returns the new balance.
func (r *Repository) GrantCredits(ctx context.Context, userID string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidCreditAmount
	}

	query := `
		INSERT INTO profiles (id, credits, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET credits = profiles.credits + EXCLUDED.credits,
		    updated_at = now()
		RETURNING credits
	`

	var balance int
	if err := r.pool.QueryRow(ctx, query, userID, n).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to grant credits: %w", err)
	}

	return balance, nil
}

// SpendCredit decrements a user's balance by one, guarded server-side.
// The decrement only applies when the stored balance is positive, so
// concurrent spends can never drive the balance negative. Returns the
// new balance, or ErrInsufficientCredits when the balance is zero or
// the profile does not exist.
func (r *Repository) SpendCredit(ctx context.Context, userID string) (int, error) {
	query := `
		UPDATE profiles
		SET credits = credits - 1,
		    updated_at = now()
		WHERE id = $1 AND credits > 0
		RETURNING credits
	`

	var balance int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientCredits
		}
		return 0, fmt.Errorf("failed to spend credit: %w", err)
	}

	return balance, nil
}
