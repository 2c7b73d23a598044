package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/npdirect/npdirect/internal/model"
)

// ApplyGrantEvent credits a user's balance for a completed payment,
// exactly once per provider event ID. The event record and the balance
// update commit in the same transaction, so a redelivered webhook
// either sees the event row and skips the grant, or retries cleanly
// after a rollback.
//
// Returns the user's balance after the call and whether this call
// performed the grant (false means the event was a duplicate).
func (r *Repository) ApplyGrantEvent(ctx context.Context, eventID, eventType, userID string, credits int) (int, bool, error) {
	if credits <= 0 {
		return 0, false, ErrInvalidCreditAmount
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertEvent := `
		INSERT INTO grant_events (id, event_type, user_id, credits, received_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, insertEvent, eventID, eventType, userID, credits)
	if err != nil {
		return 0, false, fmt.Errorf("failed to record grant event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Duplicate delivery: report the current balance, grant nothing.
		var balance int
		err := tx.QueryRow(ctx, `SELECT credits FROM profiles WHERE id = $1`, userID).Scan(&balance)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return 0, false, fmt.Errorf("failed to read balance: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, false, fmt.Errorf("failed to commit: %w", err)
		}
		return balance, false, nil
	}

	upsert := `
		INSERT INTO profiles (id, credits, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET credits = profiles.credits + EXCLUDED.credits,
		    updated_at = now()
		RETURNING credits
	`

	var balance int
	if err := tx.QueryRow(ctx, upsert, userID, credits).Scan(&balance); err != nil {
		return 0, false, fmt.Errorf("failed to grant credits: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to commit: %w", err)
	}

	return balance, true, nil
}

// GetGrantEvent retrieves a processed grant event by provider event ID.
// Used by operational tooling to answer "did we handle this delivery".
func (r *Repository) GetGrantEvent(ctx context.Context, eventID string) (*model.GrantEvent, error) {
	query := `
		SELECT id, event_type, user_id, credits, received_at
		FROM grant_events
		WHERE id = $1
	`

	var event model.GrantEvent
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.EventType,
		&event.UserID,
		&event.Credits,
		&event.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGrantEventNotFound
		}
		return nil, fmt.Errorf("failed to get grant event: %w", err)
	}

	return &event, nil
}
