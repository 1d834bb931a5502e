package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/providers"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/utils"
)

// createRetries bounds the create-or-fetch loop. Concurrent callbacks
// for the same identity race on the unique indexes; the loser of the
// race re-reads and wins on the next pass.
const createRetries = 3

// ---------------------------------------------------------------------
// OAuthService interface
// ---------------------------------------------------------------------

// OAuthService runs the federated login callback: exchange the code,
// fetch the profile and reconcile it to exactly one account.
type OAuthService interface {
	// AuthCodeURL builds the provider redirect for the login leg.
	AuthCodeURL(provider models.AuthProvider, state string) (string, error)

	// HandleCallback completes the flow and returns the account with
	// a fresh session token.
	HandleCallback(ctx context.Context, provider models.AuthProvider, code string) (*models.User, string, error)
}

type oauthService struct {
	registry   providers.Registry
	userRepo   repositories.UserRepository
	jwtService JWTService
}

func NewOAuthService(registry providers.Registry, userRepo repositories.UserRepository, jwtService JWTService) OAuthService {
	return &oauthService{
		registry:   registry,
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

func (s *oauthService) AuthCodeURL(provider models.AuthProvider, state string) (string, error) {
	p, ok := s.registry.Get(provider)
	if !ok {
		return "", utils.ErrProviderDisabled
	}
	return p.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider models.AuthProvider, code string) (*models.User, string, error) {
	p, ok := s.registry.Get(provider)
	if !ok {
		return nil, "", utils.ErrProviderDisabled
	}

	token, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}

	profile, err := p.FetchProfile(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	profile.Email = normalizeEmail(profile.Email)

	user, err := s.reconcile(ctx, provider, profile)
	if err != nil {
		return nil, "", err
	}

	sessionToken, err := s.jwtService.GenerateSessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, sessionToken, nil
}

// reconcile maps the provider profile onto exactly one account:
// an account already holding this federated identity, else the
// account holding the email (which gets linked), else a new one.
func (s *oauthService) reconcile(ctx context.Context, provider models.AuthProvider, profile *providers.Profile) (*models.User, error) {
	var lastErr error

	for attempt := 0; attempt < createRetries; attempt++ {
		user, err := s.userRepo.GetByProviderIdentity(ctx, provider, profile.ProviderID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}

		user, err = s.userRepo.GetByEmail(ctx, profile.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			linked, err := s.link(ctx, user, provider, profile)
			if err != nil {
				if isIdentityConflict(err) {
					lastErr = err
					continue
				}
				return nil, err
			}
			return linked, nil
		}

		created, err := s.create(ctx, provider, profile)
		if err != nil {
			if isIdentityConflict(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return created, nil
	}

	return nil, fmt.Errorf("failed to reconcile %s identity after %d attempts: %w", provider, createRetries, lastErr)
}

// link attaches the federated identity to the existing email account.
// The password hash, if any, stays so password login keeps working.
func (s *oauthService) link(ctx context.Context, user *models.User, provider models.AuthProvider, profile *providers.Profile) (*models.User, error) {
	verified := true
	upd := repositories.UserUpdate{
		Provider:      &provider,
		ProviderID:    &profile.ProviderID,
		EmailVerified: &verified,
	}
	if profile.Picture != "" && user.Image == nil {
		upd.Image = &profile.Picture
	}
	if err := s.userRepo.Update(ctx, user.ID, upd); err != nil {
		return nil, err
	}

	utils.Logger.Infof("Linked %s identity to existing account %s", provider, user.ID)

	user.Provider = provider
	user.ProviderID = &profile.ProviderID
	user.EmailVerified = true
	if upd.Image != nil {
		user.Image = upd.Image
	}
	return user, nil
}

// create makes a fresh federated account. The provider vouches for
// the email, so it starts verified and without a password.
func (s *oauthService) create(ctx context.Context, provider models.AuthProvider, profile *providers.Profile) (*models.User, error) {
	name := profile.Name
	if name == "" {
		name = strings.SplitN(profile.Email, "@", 2)[0]
	}

	user := &models.User{
		ID:            uuid.New(),
		Email:         profile.Email,
		Name:          name,
		Provider:      provider,
		ProviderID:    &profile.ProviderID,
		Role:          models.RoleUser,
		Tier:          models.TierGuest,
		EmailVerified: true,
	}
	if profile.Picture != "" {
		user.Image = &profile.Picture
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func isIdentityConflict(err error) bool {
	return errors.Is(err, utils.ErrEmailExists) || errors.Is(err, utils.ErrProviderIdentityExists)
}
