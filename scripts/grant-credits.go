// Command grant-credits adds video-call credits to a profile directly
// in the database. Intended for support and local development, where no
// Stripe webhook is available to do the grant.
//
// Usage:
//
//	go run scripts/grant-credits.go -email parent@example.com -credits 5
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/npdirect/npdirect/internal/repository"
)

type output struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Granted int    `json:"granted"`
	Balance int    `json:"balance"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Profile email to credit")
		userID      = flag.String("user-id", "", "Profile ID to credit (alternative to -email)")
		credits     = flag.Int("credits", 5, "Number of credits to grant")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" && *userID == "" {
		fmt.Fprintln(os.Stderr, "one of -email or -user-id is required")
		os.Exit(1)
	}
	if *credits <= 0 {
		fmt.Fprintln(os.Stderr, "-credits must be positive")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	target := *userID
	if target == "" {
		profile, err := repo.GetOrCreateProfile(ctx, strings.ToLower(strings.TrimSpace(*email)))
		if err != nil {
			fmt.Fprintln(os.Stderr, "resolve profile:", err)
			os.Exit(1)
		}
		target = profile.ID
	}

	balance, err := repo.GrantCredits(ctx, target, *credits)
	if err != nil {
		fmt.Fprintln(os.Stderr, "grant credits:", err)
		os.Exit(1)
	}

	out := output{
		UserID:  target,
		Email:   *email,
		Granted: *credits,
		Balance: balance,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("granted %d credits to %s (balance %d)\n", out.Granted, out.UserID, out.Balance)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
