package providers

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/talentsift/auth-service/internal/models"
)

// Apple's "client secret" is not a static string. It is a short-lived
// ES256 JWT signed with the developer key, minted fresh on each
// exchange so it never sits around long enough to expire mid-flight.
const appleClientSecretTTL = 5 * time.Minute

var appleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://appleid.apple.com/auth/authorize",
	TokenURL: "https://appleid.apple.com/auth/token",
}

type appleProvider struct {
	clientID    string
	teamID      string
	keyID       string
	privateKey  *ecdsa.PrivateKey
	redirectURL string
}

func NewAppleProvider(clientID, teamID, keyID string, privateKey *ecdsa.PrivateKey, redirectURL string) Provider {
	return &appleProvider{
		clientID:    clientID,
		teamID:      teamID,
		keyID:       keyID,
		privateKey:  privateKey,
		redirectURL: redirectURL,
	}
}

func (p *appleProvider) Name() models.AuthProvider {
	return models.ProviderApple
}

func (p *appleProvider) AuthCodeURL(state string) string {
	cfg := p.oauthConfig("")
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_mode", "query"),
		oauth2.SetAuthURLParam("scope", "name email"),
	)
}

func (p *appleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	secret, err := p.mintClientSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to mint apple client secret: %w", err)
	}

	token, err := p.oauthConfig(secret).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("apple token exchange failed: %w", err)
	}
	return token, nil
}

// FetchProfile reads the identity out of the id_token Apple returns
// with the token response. The id_token arrives directly from Apple
// over TLS in the exchange, so its signature is not re-verified here.
func (p *appleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("apple token response is missing id_token")
	}

	var claims struct {
		jwt.RegisteredClaims
		Email string `json:"email"`
	}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawIDToken, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse apple id_token: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("apple id_token is missing sub or email")
	}

	// Apple sends the user's name only once, in the first
	// authorization response body, not in the id_token. The account
	// name falls back to the email local part upstream.
	return &Profile{
		ProviderID: claims.Subject,
		Email:      claims.Email,
	}, nil
}

func (p *appleProvider) oauthConfig(clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: clientSecret,
		RedirectURL:  p.redirectURL,
		Endpoint:     appleEndpoint,
	}
}

func (p *appleProvider) mintClientSecret() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    p.teamID,
		Subject:   p.clientID,
		Audience:  jwt.ClaimStrings{"https://appleid.apple.com"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appleClientSecretTTL)),
	})
	token.Header["kid"] = p.keyID
	return token.SignedString(p.privateKey)
}
