//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/npdirect/npdirect/internal/testutil"
)

// ============================================================================
// Profile Repository Integration Tests
// ============================================================================

func TestIntegrationProfileRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	profile := testutil.NewTestProfile(t, 0)
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	retrieved, err := repo.GetProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if retrieved.Email != profile.Email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, profile.Email)
	}
	if retrieved.Credits != 0 {
		t.Errorf("Credits = %d, want 0", retrieved.Credits)
	}

	byEmail, err := repo.GetProfileByEmail(ctx, profile.Email)
	if err != nil {
		t.Fatalf("GetProfileByEmail failed: %v", err)
	}
	if byEmail.ID != profile.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, profile.ID)
	}
}

func TestIntegrationProfileRepository_CreateProfile_DuplicateEmail(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	p1 := testutil.NewTestProfile(t, 0)
	p2 := testutil.NewTestProfile(t, 0)
	p2.Email = p1.Email

	if err := repo.CreateProfile(ctx, p1); err != nil {
		t.Fatalf("CreateProfile (first) failed: %v", err)
	}

	err := repo.CreateProfile(ctx, p2)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationProfileRepository_GetProfile_NotFound(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	_, err := repo.GetProfile(ctx, "nonexistent-id")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got: %v", err)
	}
}

func TestIntegrationProfileRepository_GetOrCreateProfile(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	email := testutil.UniqueEmail("getorcreate")

	created, err := repo.GetOrCreateProfile(ctx, email)
	if err != nil {
		t.Fatalf("GetOrCreateProfile (create) failed: %v", err)
	}
	if created.Email != email {
		t.Errorf("Email = %q, want %q", created.Email, email)
	}

	again, err := repo.GetOrCreateProfile(ctx, email)
	if err != nil {
		t.Fatalf("GetOrCreateProfile (get) failed: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("second call created a new profile: %q vs %q", again.ID, created.ID)
	}
}

func TestIntegrationProfileRepository_GetCredits_MissingProfileReadsZero(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	credits, err := repo.GetCredits(ctx, "never-logged-in")
	if err != nil {
		t.Fatalf("GetCredits failed: %v", err)
	}
	if credits != 0 {
		t.Errorf("Credits = %d, want 0", credits)
	}
}

func TestIntegrationProfileRepository_GrantCredits(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	profile := testutil.NewTestProfile(t, 0)
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	balance, err := repo.GrantCredits(ctx, profile.ID, 5)
	if err != nil {
		t.Fatalf("GrantCredits failed: %v", err)
	}
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}

	balance, err = repo.GrantCredits(ctx, profile.ID, 5)
	if err != nil {
		t.Fatalf("GrantCredits (second) failed: %v", err)
	}
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}
}

func TestIntegrationProfileRepository_GrantCredits_CreatesMissingProfile(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	userID := testutil.UniqueID("paid-first")
	balance, err := repo.GrantCredits(ctx, userID, 5)
	if err != nil {
		t.Fatalf("GrantCredits failed: %v", err)
	}
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}

	credits, err := repo.GetCredits(ctx, userID)
	if err != nil {
		t.Fatalf("GetCredits failed: %v", err)
	}
	if credits != 5 {
		t.Errorf("Credits = %d, want 5", credits)
	}
}

func TestIntegrationProfileRepository_GrantCredits_RejectsNonPositive(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	for _, n := range []int{0, -1, -100} {
		if _, err := repo.GrantCredits(ctx, "u1", n); !errors.Is(err, ErrInvalidCreditAmount) {
			t.Errorf("GrantCredits(%d) error = %v, want ErrInvalidCreditAmount", n, err)
		}
	}
}

func TestIntegrationProfileRepository_SpendCredit(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	profile := testutil.NewTestProfile(t, 0)
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if _, err := repo.GrantCredits(ctx, profile.ID, 2); err != nil {
		t.Fatalf("GrantCredits failed: %v", err)
	}

	balance, err := repo.SpendCredit(ctx, profile.ID)
	if err != nil {
		t.Fatalf("SpendCredit failed: %v", err)
	}
	if balance != 1 {
		t.Errorf("balance = %d, want 1", balance)
	}

	balance, err = repo.SpendCredit(ctx, profile.ID)
	if err != nil {
		t.Fatalf("SpendCredit (second) failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}

	if _, err := repo.SpendCredit(ctx, profile.ID); !errors.Is(err, ErrInsufficientCredits) {
		t.Errorf("SpendCredit on empty balance error = %v, want ErrInsufficientCredits", err)
	}
}

func TestIntegrationProfileRepository_SpendCredit_MissingProfile(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	if _, err := repo.SpendCredit(ctx, "nonexistent-id"); !errors.Is(err, ErrInsufficientCredits) {
		t.Errorf("SpendCredit error = %v, want ErrInsufficientCredits", err)
	}
}

func TestIntegrationProfileRepository_SpendCredit_Concurrent(t *testing.T) {
	ctx, repo := newProfileTestEnv(t)

	const balance = 5
	const attempts = 20

	profile := testutil.NewTestProfile(t, 0)
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if _, err := repo.GrantCredits(ctx, profile.ID, balance); err != nil {
		t.Fatalf("GrantCredits failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.SpendCredit(ctx, profile.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInsufficientCredits) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != balance {
		t.Errorf("successful spends = %d, want exactly %d", succeeded, balance)
	}

	credits, err := repo.GetCredits(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetCredits failed: %v", err)
	}
	if credits != 0 {
		t.Errorf("final balance = %d, want 0", credits)
	}
}

func newProfileTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	if err := Migrate(ctx, dbURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetCoreSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
