package notify

import (
	"context"

	"github.com/talentsift/auth-service/internal/utils"
)

// LogChannel writes codes to the application log instead of sending
// them. Used when no mail provider is configured, so local setups can
// read the code straight from the service output.
type LogChannel struct{}

func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

func (c *LogChannel) SendVerificationCode(ctx context.Context, email, name, code string) bool {
	utils.Logger.Warnf("Email delivery disabled; verification code for %s: %s", email, code)
	return true
}

func (c *LogChannel) SendPasswordResetCode(ctx context.Context, email, code string) bool {
	utils.Logger.Warnf("Email delivery disabled; password reset code for %s: %s", email, code)
	return true
}
