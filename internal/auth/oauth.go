package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

const (
	googleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	githubUserURL       = "https://api.github.com/user"
	githubEmailsURL     = "https://api.github.com/user/emails"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email"
)

// Profile is the subset of a provider's user info used to match accounts.
type Profile struct {
	Email string
	Name  string
}

// OAuthProvider signs users in with an external authorization server.
type OAuthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
	local       *LocalProvider
}

// NewOAuthProvider configures the named provider ("google", "github" or "facebook") from cfg.
func NewOAuthProvider(name string, cfg shared.ProviderConfig, local *LocalProvider) (*OAuthProvider, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: oauth.%s client_id and client_secret are required", shared.ErrMissingConfig, name)
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
	}

	var userInfoURL string
	switch name {
	case models.ProviderGoogle:
		config.Endpoint = endpoints.Google
		config.Scopes = []string{"openid", "email", "profile"}
		userInfoURL = googleUserInfoURL
	case models.ProviderGitHub:
		config.Endpoint = endpoints.GitHub
		config.Scopes = []string{"read:user", "user:email"}
		userInfoURL = githubUserURL
	case models.ProviderFacebook:
		config.Endpoint = endpoints.Facebook
		config.Scopes = []string{"email", "public_profile"}
		userInfoURL = facebookUserInfoURL
	default:
		return nil, fmt.Errorf("%w: unknown oauth provider %q", shared.ErrInvalidArgument, name)
	}

	return &OAuthProvider{name: name, config: config, userInfoURL: userInfoURL, local: local}, nil
}

// WithEndpoint points the provider at a different authorization server and user info URL.
func (p *OAuthProvider) WithEndpoint(endpoint oauth2.Endpoint, userInfoURL string) *OAuthProvider {
	p.config.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	return p
}

// Name returns the provider name.
func (p *OAuthProvider) Name() string {
	return p.name
}

// Config returns the underlying OAuth2 configuration.
func (p *OAuthProvider) Config() *oauth2.Config {
	return p.config
}

// AuthCodeURL returns the URL the user visits to grant access.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for a token, looks up the user's email and signs the matching account in.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*Result, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}

	profile, err := p.profile(ctx, p.config.Client(ctx, token))
	if err != nil {
		return nil, err
	}

	user, err := p.local.FindOrCreate(ctx, profile.Email, profile.Name, p.name)
	if err != nil {
		return nil, err
	}
	return p.local.Issue(ctx, user)
}

func (p *OAuthProvider) profile(ctx context.Context, client *http.Client) (*Profile, error) {
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := getJSON(ctx, client, p.userInfoURL, &info); err != nil {
		return nil, err
	}

	profile := &Profile{Email: info.Email, Name: info.Name}
	if profile.Name == "" {
		profile.Name = info.Login
	}

	// GitHub omits private emails from the profile.
	if profile.Email == "" && p.name == models.ProviderGitHub {
		email, err := p.githubPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
		profile.Email = email
	}

	if profile.Email == "" {
		return nil, fmt.Errorf("%w: %s did not return an email address", shared.ErrAuthFailed, p.name)
	}
	return profile, nil
}

func (p *OAuthProvider) githubPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	emailsURL := githubEmailsURL
	if p.userInfoURL != githubUserURL {
		emailsURL = strings.TrimSuffix(p.userInfoURL, "/") + "/emails"
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, emailsURL, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", shared.ErrAPIRequest, url, resp.StatusCode)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode user info: %w", err)
	}
	return nil
}
