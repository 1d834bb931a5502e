package models

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose scopes a verification code to one use case.
type CodePurpose string

const (
	PurposeVerifyEmail   CodePurpose = "VERIFY_EMAIL"
	PurposeResetPassword CodePurpose = "RESET_PASSWORD"
)

// VerificationCode for the verification_codes table. At most one row
// exists per (email, purpose); issuing a new code overwrites the row.
type VerificationCode struct {
	ID        uuid.UUID
	Email     string
	Purpose   CodePurpose
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}
