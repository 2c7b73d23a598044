// North Pole Direct Webhook Sender Example
//
// This is a minimal example of how to exercise the payment webhook
// locally without the Stripe CLI. It builds a checkout.session.completed
// event, signs it the way Stripe does, and POSTs it to a running server.
//
// Usage:
//   export NPDIRECT_WEBHOOK_SECRET="whsec_your_secret_here"
//   go run main.go -user <user-id> -credits 5
//
// The secret must match the STRIPE_WEBHOOK_SECRET the server runs with.

package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

func main() {
	var (
		target  = flag.String("target", "http://localhost:8080/webhooks/stripe", "Webhook endpoint URL")
		userID  = flag.String("user", "", "User ID to credit")
		credits = flag.Int("credits", 5, "Credits the fake purchase grants")
		eventID = flag.String("event-id", "", "Event ID (random if empty; reuse one to test deduplication)")
	)
	flag.Parse()

	secret := os.Getenv("NPDIRECT_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("NPDIRECT_WEBHOOK_SECRET environment variable is required")
	}
	if *userID == "" {
		log.Fatal("-user is required")
	}

	id := *eventID
	if id == "" {
		id = "evt_test_" + randomHex(12)
	}

	payload, err := buildEvent(id, *userID, *credits)
	if err != nil {
		log.Fatalf("build event: %v", err)
	}

	timestamp := time.Now().Unix()
	signature := sign(timestamp, payload, secret)

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", timestamp, signature))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("send webhook: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Printf("event %s -> %d %s", id, resp.StatusCode, string(body))
}

// buildEvent constructs a minimal checkout.session.completed event with
// the metadata the server reads the grant from.
func buildEvent(eventID, userID string, credits int) ([]byte, error) {
	session := map[string]any{
		"id":     "cs_test_" + randomHex(12),
		"object": "checkout.session",
		"metadata": map[string]string{
			"userId":       userID,
			"creditsToAdd": strconv.Itoa(credits),
		},
	}
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	event := map[string]any{
		"id":      eventID,
		"object":  "event",
		"type":    "checkout.session.completed",
		"created": time.Now().Unix(),
		"data": map[string]any{
			"object": json.RawMessage(sessionJSON),
		},
	}
	return json.Marshal(event)
}

// sign computes the v1 signature over "{timestamp}.{payload}" with
// HMAC-SHA256, matching Stripe's webhook signing scheme.
func sign(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("read random: %v", err)
	}
	return hex.EncodeToString(buf)
}
