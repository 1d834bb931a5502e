// Package notify delivers verification codes to account holders.
// Delivery is advisory: a false return means the code did not go out,
// but the code itself stays valid and can be resent.
package notify

import "context"

// Channel sends verification codes over some transport. Implementations
// report success as a bool instead of an error because the caller never
// rolls back code issuance on delivery failure.
type Channel interface {
	SendVerificationCode(ctx context.Context, email, name, code string) bool
	SendPasswordResetCode(ctx context.Context, email, code string) bool
}
