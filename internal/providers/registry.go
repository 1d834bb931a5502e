package providers

import (
	"fmt"
	"strings"

	"github.com/talentsift/auth-service/internal/config"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/utils"
)

// NewRegistry builds the enabled provider set from config. Disabled
// providers are skipped with a log line so a glance at startup output
// shows exactly which login buttons will work.
func NewRegistry(cfg *config.Config) Registry {
	registry := Registry{}

	if !cfg.Google.Disabled {
		registry[models.ProviderGoogle] = NewGoogleProvider(
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			callbackURL(cfg.AppUrl, models.ProviderGoogle),
		)
	}
	if !cfg.GitHub.Disabled {
		registry[models.ProviderGitHub] = NewGitHubProvider(
			cfg.GitHub.ClientID,
			cfg.GitHub.ClientSecret,
			callbackURL(cfg.AppUrl, models.ProviderGitHub),
		)
	}
	if !cfg.Apple.Disabled {
		registry[models.ProviderApple] = NewAppleProvider(
			cfg.Apple.ClientID,
			cfg.Apple.TeamID,
			cfg.Apple.KeyID,
			cfg.Apple.PrivateKey,
			callbackURL(cfg.AppUrl, models.ProviderApple),
		)
	}

	for _, name := range []models.AuthProvider{models.ProviderGoogle, models.ProviderGitHub, models.ProviderApple} {
		if _, ok := registry[name]; ok {
			utils.Logger.Infof("OAuth provider enabled: %s", name)
		} else {
			utils.Logger.Infof("OAuth provider disabled: %s", name)
		}
	}

	return registry
}

func callbackURL(appUrl string, name models.AuthProvider) string {
	return fmt.Sprintf("%s/auth/v1/oauth/%s/callback", strings.TrimRight(appUrl, "/"), strings.ToLower(string(name)))
}
