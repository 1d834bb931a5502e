package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentsift/auth-service/internal/dtos"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/utils"
)

type authFixture struct {
	users   *fakeUserRepo
	codes   *fakeCodeRepo
	channel *fakeChannel
	jwt     JWTService
	svc     AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	channel := newFakeChannel()
	jwt := newTestJWTService(t, time.Hour)
	verification := NewVerificationService(codes, 15*time.Minute)

	return &authFixture{
		users:   users,
		codes:   codes,
		channel: channel,
		jwt:     jwt,
		svc:     NewAuthService(users, verification, jwt, channel),
	}
}

func (f *authFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), dtos.RegisterRequest{
		Email:    email,
		Name:     "Ada",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// ---------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "ada@example.com", "hunter2hunter2")

	require.Equal(t, "ada@example.com", user.Email)
	require.Equal(t, models.ProviderEmail, user.Provider)
	require.Equal(t, models.RoleUser, user.Role)
	require.Equal(t, models.TierGuest, user.Tier)
	require.False(t, user.EmailVerified)
	require.NotNil(t, user.PasswordHash)
	require.NotEqual(t, "hunter2hunter2", *user.PasswordHash)

	// A verification code went out on registration.
	require.NotEmpty(t, f.channel.lastVerifyCode("ada@example.com"))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "  Ada@Example.COM ", "hunter2hunter2")
	require.Equal(t, "ada@example.com", user.Email)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")

	_, err := f.svc.Register(context.Background(), dtos.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Imposter",
		Password: "differentpass1",
	})
	require.True(t, errors.Is(err, utils.ErrEmailExists))
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")

	_, _, err := f.svc.Login(context.Background(), "ada@example.com", "hunter2hunter2")
	require.True(t, errors.Is(err, utils.ErrEmailNotVerified))
}

func TestLoginAfterVerification(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "ada@example.com", "hunter2hunter2")

	code := f.channel.lastVerifyCode("ada@example.com")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "ada@example.com", code))

	loggedIn, token, err := f.svc.Login(context.Background(), "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.True(t, loggedIn.EmailVerified)

	claims, err := f.jwt.VerifySessionToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.AccountID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")

	_, _, err := f.svc.Login(context.Background(), "ada@example.com", "wrongpassword1")
	require.True(t, errors.Is(err, utils.ErrInvalidCredentials))
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Login(context.Background(), "ghost@example.com", "hunter2hunter2")
	require.True(t, errors.Is(err, utils.ErrInvalidCredentials))
}

func TestLoginPasswordlessAccountRejected(t *testing.T) {
	f := newAuthFixture(t)

	// A federated account has no password to check against.
	providerID := "google-123"
	user := testUser()
	user.Email = "oauth@example.com"
	user.PasswordHash = nil
	user.Provider = models.ProviderGoogle
	user.ProviderID = &providerID
	require.NoError(t, f.users.Create(context.Background(), user))

	_, _, err := f.svc.Login(context.Background(), "oauth@example.com", "anything-at-all")
	require.True(t, errors.Is(err, utils.ErrInvalidCredentials))
}

// ---------------------------------------------------------------------
// VerifyEmail
// ---------------------------------------------------------------------

func TestVerifyEmailWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")

	code := f.channel.lastVerifyCode("ada@example.com")
	wrong := "123456"
	if wrong == code {
		wrong = "654321"
	}

	err := f.svc.VerifyEmail(context.Background(), "ada@example.com", wrong)
	require.True(t, errors.Is(err, utils.ErrInvalidCode))

	// The right code still works afterwards.
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "ada@example.com", code))
}

func TestVerifyEmailCodeSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")

	code := f.channel.lastVerifyCode("ada@example.com")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "ada@example.com", code))

	err := f.svc.VerifyEmail(context.Background(), "ada@example.com", code)
	require.True(t, errors.Is(err, utils.ErrInvalidCode))
}

// ---------------------------------------------------------------------
// ResendVerificationCode
// ---------------------------------------------------------------------

func TestResendReplacesCode(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")
	first := f.channel.lastVerifyCode("ada@example.com")

	require.NoError(t, f.svc.ResendVerificationCode(context.Background(), "ada@example.com"))
	second := f.channel.lastVerifyCode("ada@example.com")

	if first != second {
		err := f.svc.VerifyEmail(context.Background(), "ada@example.com", first)
		require.True(t, errors.Is(err, utils.ErrInvalidCode))
	}
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "ada@example.com", second))
}

func TestResendSilentForUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.ResendVerificationCode(context.Background(), "ghost@example.com"))
	require.Empty(t, f.channel.lastVerifyCode("ghost@example.com"))
}

func TestResendSilentForVerifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")
	code := f.channel.lastVerifyCode("ada@example.com")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "ada@example.com", code))

	require.NoError(t, f.svc.ResendVerificationCode(context.Background(), "ada@example.com"))
	// No new code was delivered after verification.
	require.Equal(t, code, f.channel.lastVerifyCode("ada@example.com"))
}

// ---------------------------------------------------------------------
// ForgotPassword / ResetPassword
// ---------------------------------------------------------------------

func TestForgotPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")
	verify := f.channel.lastVerifyCode("ada@example.com")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "ada@example.com", verify))

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "ada@example.com"))
	reset := f.channel.lastResetCode("ada@example.com")
	require.NotEmpty(t, reset)

	require.NoError(t, f.svc.ResetPassword(context.Background(), "ada@example.com", reset, "newpassword123"))

	_, _, err := f.svc.Login(context.Background(), "ada@example.com", "hunter2hunter2")
	require.True(t, errors.Is(err, utils.ErrInvalidCredentials))

	_, _, err = f.svc.Login(context.Background(), "ada@example.com", "newpassword123")
	require.NoError(t, err)
}

func TestForgotPasswordSilentForUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "ghost@example.com"))
	require.Empty(t, f.channel.lastResetCode("ghost@example.com"))
}

func TestForgotPasswordSilentForPasswordlessAccount(t *testing.T) {
	f := newAuthFixture(t)

	providerID := "google-123"
	user := testUser()
	user.Email = "oauth@example.com"
	user.PasswordHash = nil
	user.Provider = models.ProviderGoogle
	user.ProviderID = &providerID
	require.NoError(t, f.users.Create(context.Background(), user))

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "oauth@example.com"))
	require.Empty(t, f.channel.lastResetCode("oauth@example.com"))
}

func TestResetPasswordCodeSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com", "hunter2hunter2")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "ada@example.com"))
	reset := f.channel.lastResetCode("ada@example.com")

	require.NoError(t, f.svc.ResetPassword(context.Background(), "ada@example.com", reset, "newpassword123"))

	err := f.svc.ResetPassword(context.Background(), "ada@example.com", reset, "anotherpass456")
	require.True(t, errors.Is(err, utils.ErrInvalidCode))
}
