package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/talentsift/auth-service/internal/dtos"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/notify"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/utils"
)

// ---------------------------------------------------------------------
// AuthService interface
// ---------------------------------------------------------------------

// AuthService implements email/password authentication and the code
// flows around it. ResendVerificationCode and ForgotPassword return
// success for unknown emails so responses never reveal whether an
// address has an account.
type AuthService interface {
	Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerificationCode(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type authService struct {
	userRepo     repositories.UserRepository
	verification VerificationService
	jwtService   JWTService
	channel      notify.Channel
}

func NewAuthService(
	userRepo repositories.UserRepository,
	verification VerificationService,
	jwtService JWTService,
	channel notify.Channel,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		verification: verification,
		jwtService:   jwtService,
		channel:      channel,
	}
}

// ---------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------

func (s *authService) Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: &hash,
		Provider:     models.ProviderEmail,
		Role:         models.RoleUser,
		Tier:         models.TierGuest,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Code issuance failing after the account exists is not fatal:
	// the resend endpoint covers it.
	issueErr := s.verification.Issue(ctx, email, models.PurposeVerifyEmail, func(code string) bool {
		return s.channel.SendVerificationCode(ctx, email, user.Name, code)
	})
	if issueErr != nil {
		utils.Logger.WithError(issueErr).Errorf("Failed to issue verification code for new account %s", email)
	}

	return user, nil
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.PasswordHash == nil {
		// OAuth-only accounts have no password; a password login
		// against one fails the same way as a wrong password.
		return nil, "", utils.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, "", utils.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, "", utils.ErrEmailNotVerified
	}

	token, err := s.jwtService.GenerateSessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ---------------------------------------------------------------------
// VerifyEmail
// ---------------------------------------------------------------------

func (s *authService) VerifyEmail(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	outcome, err := s.verification.Redeem(ctx, email, models.PurposeVerifyEmail, code)
	if err != nil {
		return err
	}
	if outcome != RedeemSuccess {
		utils.Logger.Infof("Email verification failed for %s: %s", email, outcome)
		return utils.ErrInvalidCode
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrInvalidCode
	}
	if user.EmailVerified {
		return nil
	}

	verified := true
	return s.userRepo.Update(ctx, user.ID, repositories.UserUpdate{EmailVerified: &verified})
}

// ---------------------------------------------------------------------
// ResendVerificationCode
// ---------------------------------------------------------------------

func (s *authService) ResendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.EmailVerified {
		// Unknown or already-verified addresses get the same success
		// response as real pending ones.
		return nil
	}

	return s.verification.Issue(ctx, email, models.PurposeVerifyEmail, func(code string) bool {
		return s.channel.SendVerificationCode(ctx, email, user.Name, code)
	})
}

// ---------------------------------------------------------------------
// ForgotPassword / ResetPassword
// ---------------------------------------------------------------------

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.PasswordHash == nil {
		// No account, or an OAuth-only account with no password to
		// reset. Respond exactly like the happy path.
		return nil
	}

	return s.verification.Issue(ctx, email, models.PurposeResetPassword, func(code string) bool {
		return s.channel.SendPasswordResetCode(ctx, email, code)
	})
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)

	outcome, err := s.verification.Redeem(ctx, email, models.PurposeResetPassword, code)
	if err != nil {
		return err
	}
	if outcome != RedeemSuccess {
		utils.Logger.Infof("Password reset failed for %s: %s", email, outcome)
		return utils.ErrInvalidCode
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrInvalidCode
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user.ID, repositories.UserUpdate{PasswordHash: &hash})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
