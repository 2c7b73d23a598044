// Package model defines domain entities for the application.
package model

import "time"

// Profile is a parent account with a purchased credit balance.
// A row is created on first login or on first credit grant, whichever
// comes first.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
