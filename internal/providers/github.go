package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githubOAuth "golang.org/x/oauth2/github"

	"github.com/talentsift/auth-service/internal/models"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

type githubProvider struct {
	config *oauth2.Config
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) Provider {
	return &githubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githubOAuth.Endpoint,
		},
	}
}

func (p *githubProvider) Name() models.AuthProvider {
	return models.ProviderGitHub
}

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *githubProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}
	return token, nil
}

func (p *githubProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(githubUserURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("github user endpoint returned status %d", resp.StatusCode)
	}

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode github user: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("github user is missing id")
	}

	// The public profile email is often empty; the emails endpoint
	// always lists the verified primary address.
	email := user.Email
	if email == "" {
		email, err = p.fetchPrimaryEmail(client)
		if err != nil {
			return nil, err
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &Profile{
		ProviderID: strconv.FormatInt(user.ID, 10),
		Email:      email,
		Name:       name,
		Picture:    user.AvatarURL,
	}, nil
}

func (p *githubProvider) fetchPrimaryEmail(client *http.Client) (string, error) {
	resp, err := client.Get(githubEmailsURL)
	if err != nil {
		return "", fmt.Errorf("failed to get github emails: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("github emails endpoint returned status %d", resp.StatusCode)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("failed to decode github emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("github account has no verified primary email")
}
