package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/talentsift/auth-service/internal/utils"
)

// SendGridChannel delivers codes by email through SendGrid.
type SendGridChannel struct {
	client    *sendgrid.Client
	orgName   string
	fromEmail string
}

func NewSendGridChannel(apiKey, orgName, fromEmail string) *SendGridChannel {
	return &SendGridChannel{
		client:    sendgrid.NewSendClient(apiKey),
		orgName:   orgName,
		fromEmail: fromEmail,
	}
}

func (c *SendGridChannel) SendVerificationCode(ctx context.Context, email, name, code string) bool {
	subject := c.orgName + " - Verify Your Email"
	intro := "Please use the following code to verify your email address. This code will expire in 15 minutes."
	return c.send(email, name, subject, "Verify Your Email", intro, code)
}

func (c *SendGridChannel) SendPasswordResetCode(ctx context.Context, email, code string) bool {
	subject := c.orgName + " - Password Reset Code"
	intro := "Please use the following code to reset your password. This code will expire in 15 minutes. If you did not request a reset, you can ignore this email."
	return c.send(email, "", subject, "Password Reset", intro, code)
}

func (c *SendGridChannel) send(email, name, subject, header, intro, code string) bool {
	from := mail.NewEmail(c.orgName, c.fromEmail)
	to := mail.NewEmail(name, email)
	plainTextContent := fmt.Sprintf("Your verification code is %s", code)
	htmlContent := fmt.Sprintf(codeEmailHTML, header, intro, code, time.Now().Year())
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	resp, err := c.client.Send(message)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send verification email to %s via SendGrid", email)
		return false
	}
	if resp.StatusCode >= 400 {
		utils.Logger.Errorf("SendGrid rejected verification email to %s with status %d", email, resp.StatusCode)
		return false
	}
	return true
}
