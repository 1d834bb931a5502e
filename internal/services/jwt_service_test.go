package services

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/auth-service/internal/config"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/utils"
)

func newTestJWTService(t *testing.T, expiry time.Duration) JWTService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := &config.Config{
		OrganizationName: "TalentSift",
		TokenExpiry:      expiry,
		RSAPrivateKey:    key,
		RSAPublicKey:     &key.PublicKey,
	}
	return NewJWTService(cfg)
}

func testUser() *models.User {
	hash := "$2a$12$notarealhashnotarealhashnotarealhashnotarealhash"
	return &models.User{
		ID:            uuid.New(),
		Email:         "a@example.com",
		Name:          "Ada",
		PasswordHash:  &hash,
		Provider:      models.ProviderEmail,
		Role:          models.RoleUser,
		Tier:          models.TierGuest,
		EmailVerified: true,
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)
	user := testUser()
	user.Role = models.RoleRecruiter
	user.Tier = models.TierRecruiter

	token, err := svc.GenerateSessionToken(user)
	require.NoError(t, err)

	claims, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.AccountID)
	require.Equal(t, models.RoleRecruiter, claims.Role)
	require.Equal(t, models.TierRecruiter, claims.Tier)
}

func TestSessionTokenExpired(t *testing.T) {
	svc := newTestJWTService(t, -time.Minute)

	token, err := svc.GenerateSessionToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifySessionToken(token)
	require.True(t, errors.Is(err, utils.ErrTokenExpired))
}

func TestSessionTokenTampered(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	token, err := svc.GenerateSessionToken(testUser())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.VerifySessionToken(tampered)
	require.True(t, errors.Is(err, utils.ErrInvalidToken))
}

func TestSessionTokenWrongKey(t *testing.T) {
	issuer := newTestJWTService(t, time.Hour)
	verifier := newTestJWTService(t, time.Hour)

	token, err := issuer.GenerateSessionToken(testUser())
	require.NoError(t, err)

	_, err = verifier.VerifySessionToken(token)
	require.True(t, errors.Is(err, utils.ErrInvalidToken))
}

func TestSessionTokenGarbage(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	_, err := svc.VerifySessionToken("not-a-jwt")
	require.True(t, errors.Is(err, utils.ErrInvalidToken))
}
