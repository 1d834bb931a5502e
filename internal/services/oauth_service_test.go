package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/providers"
	"github.com/talentsift/auth-service/internal/utils"
)

type oauthFixture struct {
	users    *fakeUserRepo
	provider *fakeProvider
	svc      OAuthService
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()
	users := newFakeUserRepo()
	provider := &fakeProvider{
		name: models.ProviderGoogle,
		profile: &providers.Profile{
			ProviderID: "google-123",
			Email:      "ada@example.com",
			Name:       "Ada Lovelace",
			Picture:    "https://example.com/ada.jpg",
		},
	}
	registry := providers.Registry{models.ProviderGoogle: provider}
	jwt := newTestJWTService(t, time.Hour)

	return &oauthFixture{
		users:    users,
		provider: provider,
		svc:      NewOAuthService(registry, users, jwt),
	}
}

func TestOAuthCreatesNewVerifiedAccount(t *testing.T) {
	f := newOAuthFixture(t)

	user, token, err := f.svc.HandleCallback(context.Background(), models.ProviderGoogle, "auth-code")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.Equal(t, "ada@example.com", user.Email)
	require.Equal(t, models.ProviderGoogle, user.Provider)
	require.NotNil(t, user.ProviderID)
	require.Equal(t, "google-123", *user.ProviderID)
	require.True(t, user.EmailVerified)
	require.Nil(t, user.PasswordHash)
	require.Equal(t, models.TierGuest, user.Tier)
}

func TestOAuthRepeatLoginIsIdempotent(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	first, _, err := f.svc.HandleCallback(ctx, models.ProviderGoogle, "auth-code")
	require.NoError(t, err)

	second, _, err := f.svc.HandleCallback(ctx, models.ProviderGoogle, "auth-code")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, f.users.users, 1)
}

func TestOAuthLinksExistingEmailAccount(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	// An email/password account already holds the address.
	hash := "some-bcrypt-hash"
	existing := testUser()
	existing.Email = "ada@example.com"
	existing.PasswordHash = &hash
	existing.EmailVerified = false
	require.NoError(t, f.users.Create(ctx, existing))

	user, _, err := f.svc.HandleCallback(ctx, models.ProviderGoogle, "auth-code")
	require.NoError(t, err)

	require.Equal(t, existing.ID, user.ID)
	require.Equal(t, models.ProviderGoogle, user.Provider)
	require.True(t, user.EmailVerified)
	// The password survives linking.
	require.NotNil(t, user.PasswordHash)
	require.Len(t, f.users.users, 1)
}

func TestOAuthRetriesOnCreateConflict(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	// First create attempt loses a race; the retry reads again and
	// succeeds.
	f.users.createErrs = []error{utils.ErrEmailExists}

	user, _, err := f.svc.HandleCallback(ctx, models.ProviderGoogle, "auth-code")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
}

func TestOAuthDisabledProvider(t *testing.T) {
	f := newOAuthFixture(t)

	_, _, err := f.svc.HandleCallback(context.Background(), models.ProviderGitHub, "auth-code")
	require.True(t, errors.Is(err, utils.ErrProviderDisabled))

	_, err = f.svc.AuthCodeURL(models.ProviderGitHub, "state")
	require.True(t, errors.Is(err, utils.ErrProviderDisabled))
}

func TestOAuthExchangeFailure(t *testing.T) {
	f := newOAuthFixture(t)
	f.provider.exchangeErr = errors.New("upstream 500")

	_, _, err := f.svc.HandleCallback(context.Background(), models.ProviderGoogle, "auth-code")
	require.True(t, errors.Is(err, utils.ErrExternalServiceFailure))
	require.Len(t, f.users.users, 0)
}

func TestOAuthAuthCodeURLCarriesState(t *testing.T) {
	f := newOAuthFixture(t)

	url, err := f.svc.AuthCodeURL(models.ProviderGoogle, "state-token-1")
	require.NoError(t, err)
	require.Contains(t, url, "state=state-token-1")
}
