package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider records how an account was created / signs in.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "EMAIL"
	ProviderGoogle AuthProvider = "GOOGLE"
	ProviderGitHub AuthProvider = "GITHUB"
	ProviderApple  AuthProvider = "APPLE"
)

// ParseProvider converts a lowercase URL segment ("google", "github",
// "apple") to the enum. EMAIL is not a valid OAuth provider tag.
func ParseProvider(s string) (AuthProvider, bool) {
	switch s {
	case "google":
		return ProviderGoogle, true
	case "github":
		return ProviderGitHub, true
	case "apple":
		return ProviderApple, true
	default:
		return "", false
	}
}

// Role governs authorization, not quota.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleRecruiter Role = "RECRUITER"
)

// Tier governs usage quota and feature access.
type Tier string

const (
	TierGuest     Tier = "GUEST"
	TierPro       Tier = "PRO"
	TierRecruiter Tier = "RECRUITER"
)

// User is the canonical account record: exactly one per email address,
// regardless of how many sign-in providers are linked to it.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string

	// PasswordHash is set only for accounts that can log in with a
	// password; OAuth-only accounts leave it nil.
	PasswordHash *string

	Provider   AuthProvider
	ProviderID *string

	Role Role
	Tier Tier

	EmailVerified bool

	AnalysesThisMonth     int
	AnalysesLimitOverride *int

	Image *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
