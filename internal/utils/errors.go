package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrEmailExists            = errors.New("email_exists")
	ErrProviderIdentityExists = errors.New("provider_identity_exists")
	ErrInvalidCredentials     = errors.New("invalid_credentials")
	ErrEmailNotVerified       = errors.New("email_not_verified")

	// ErrInvalidCode is the single user-facing failure for verification
	// code redemption; the precise reason (wrong digits, expired, no
	// active code) is logged server-side only.
	ErrInvalidCode = errors.New("invalid_or_expired_code")

	ErrInvalidToken = errors.New("invalid_token")
	ErrTokenExpired = errors.New("token_expired")

	ErrProviderDisabled = errors.New("provider_disabled")

	ErrInvalidImage = errors.New("invalid_image")

	// For external service failures (e.g., SendGrid, S3)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)
