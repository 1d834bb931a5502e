package services

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentsift/auth-service/internal/config"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/utils"
)

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

// JWTService issues and verifies session tokens. Tokens are valid for
// exactly their lifetime; there is no server-side session state and no
// revocation list, so Verify never touches the database.
type JWTService interface {
	GenerateSessionToken(user *models.User) (string, error)
	VerifySessionToken(tokenString string) (*SessionClaims, error)
}

// SessionClaims is the identity carried inside a session token.
type SessionClaims struct {
	AccountID uuid.UUID
	Role      models.Role
	Tier      models.Tier
}

type sessionTokenClaims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
	Tier models.Tier `json:"tier"`
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	privateKey  *rsa.PrivateKey
	publicKey   *rsa.PublicKey
	issuer      string
	tokenExpiry time.Duration
}

func NewJWTService(cfg *config.Config) JWTService {
	return &jwtService{
		privateKey:  cfg.RSAPrivateKey,
		publicKey:   cfg.RSAPublicKey,
		issuer:      cfg.OrganizationName,
		tokenExpiry: cfg.TokenExpiry,
	}
}

func (j *jwtService) GenerateSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := sessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenExpiry)),
			ID:        uuid.NewString(),
		},
		Role: user.Role,
		Tier: user.Tier,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(j.privateKey)
}

func (j *jwtService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	var claims sessionTokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.ErrTokenExpired
		}
		return nil, utils.ErrInvalidToken
	}
	if !token.Valid {
		return nil, utils.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	return &SessionClaims{
		AccountID: accountID,
		Role:      claims.Role,
		Tier:      claims.Tier,
	}, nil
}
