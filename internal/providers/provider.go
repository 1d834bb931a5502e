// Package providers implements the federated login integrations.
// Each provider wraps its OAuth2 flow behind a common interface so the
// rest of the service never sees provider-specific wire details.
package providers

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/talentsift/auth-service/internal/models"
)

// Profile is the normalized identity a provider returns after a
// successful code exchange.
type Profile struct {
	ProviderID string
	Email      string
	Name       string
	Picture    string
}

// Provider is one federated login integration.
type Provider interface {
	Name() models.AuthProvider

	// AuthCodeURL builds the URL the user is redirected to, carrying
	// the anti-forgery state token.
	AuthCodeURL(state string) string

	// ExchangeCode trades the callback authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchProfile resolves the token into the provider's identity.
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Registry holds the enabled providers keyed by name.
type Registry map[models.AuthProvider]Provider

func (r Registry) Get(name models.AuthProvider) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}
