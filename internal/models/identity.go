// Package models defines the data structures passed between the session,
// validation, storage and listing components.
package models

import "time"

// Identity is the authenticated subject as known to the auth provider.
// It is cached in memory for the lifetime of a session and mutated only
// by provider-issued events (sign-in, sign-out, refresh).
type Identity struct {
	// Subject is the opaque subject identifier issued by the provider.
	Subject string
	// Email is the subject's email address, when the provider discloses it.
	Email string
	// IssuedAt and ExpiresAt carry the token metadata.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Profile is the application-level user record keyed 1:1 by Identity subject.
// Absence of a Profile for a known Identity is a valid, non-error state:
// onboarding has not completed yet.
type Profile struct {
	ID          string
	DisplayName string
	Handle      string
	Bio         string
	AvatarURL   string

	// Latitude/Longitude form an optional free-form location.
	Latitude  *float64
	Longitude *float64

	PointsBalance  int
	ItemsListed    int
	SwapsCompleted int

	Active      bool
	CreatedAt   time.Time
	MemberSince time.Time
}
