package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/talentsift/auth-service/internal/config"
	"github.com/talentsift/auth-service/internal/models"
	"github.com/talentsift/auth-service/internal/services"
	"github.com/talentsift/auth-service/internal/utils"
)

const (
	oauthStateCookieName = "oauth_state"
	oauthStateTTL        = 10 * time.Minute
)

type OAuthController struct {
	oauthService services.OAuthService
	cfg          *config.Config
}

func NewOAuthController(oauthService services.OAuthService, cfg *config.Config) *OAuthController {
	return &OAuthController{oauthService: oauthService, cfg: cfg}
}

// ---------------------------------------------------------------------
// Login – redirect the browser to the provider
// ---------------------------------------------------------------------

func (c *OAuthController) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := c.providerFromRequest(w, r)
	if !ok {
		return
	}

	state := utils.RandomString(32)

	authURL, err := c.oauthService.AuthCodeURL(provider, state)
	if err != nil {
		c.respondProviderError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth/v1/oauth",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(c.cfg.AppUrl, "https"),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

// ---------------------------------------------------------------------
// Callback – complete the flow and hand the token to the frontend
// ---------------------------------------------------------------------

func (c *OAuthController) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := c.providerFromRequest(w, r)
	if !ok {
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		utils.Logger.Warnf("%s OAuth callback returned error: %s", provider, errMsg)
		c.redirectWithError(w, r, "provider_denied")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeUnauthorized, "Invalid state token", nil,
		)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing authorization code", nil,
		)
		return
	}

	_, token, err := c.oauthService.HandleCallback(r.Context(), provider, code)
	if err != nil {
		if errors.Is(err, utils.ErrProviderDisabled) {
			c.respondProviderError(w, err)
			return
		}
		utils.Logger.WithError(err).Errorf("%s OAuth callback failed", provider)
		c.redirectWithError(w, r, "oauth_failed")
		return
	}

	// Hand the session token to the frontend on its own origin.
	redirect := fmt.Sprintf("%s/auth/callback?token=%s",
		strings.TrimRight(c.cfg.FrontendUrl, "/"), url.QueryEscape(token))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// ---------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------

func (c *OAuthController) providerFromRequest(w http.ResponseWriter, r *http.Request) (models.AuthProvider, bool) {
	name := mux.Vars(r)["provider"]
	provider, ok := models.ParseProvider(name)
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, fmt.Sprintf("Unknown provider %q", name), nil,
		)
		return "", false
	}
	return provider, true
}

func (c *OAuthController) respondProviderError(w http.ResponseWriter, err error) {
	if errors.Is(err, utils.ErrProviderDisabled) {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeProviderDisabled, "This login provider is not enabled", nil,
		)
		return
	}
	utils.RespondErrorWithCode(
		w, http.StatusInternalServerError, utils.ErrCodeInternal, "OAuth login failed", nil, err,
	)
}

func (c *OAuthController) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	redirect := fmt.Sprintf("%s/auth/callback?error=%s",
		strings.TrimRight(c.cfg.FrontendUrl, "/"), url.QueryEscape(reason))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}
