package google

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

// IntegrationPrefix is the environment prefix of the credential store, so
// the access token is read from GOOGLE_CALENDAR_ACCESS_TOKEN.
const IntegrationPrefix = "GOOGLE_CALENDAR"

// Integration holds the credentials an embedding platform hands to the
// server through the environment. Every field is optional.
type Integration struct {
	AccessToken  string        `envconfig:"ACCESS_TOKEN"`
	RefreshToken string        `envconfig:"REFRESH_TOKEN"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	APIKey       string        `envconfig:"API_KEY"`

	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	RedirectURL  string `envconfig:"REDIRECT_URL"`
	ReadOnly     bool   `envconfig:"READ_ONLY_SCOPES"`
}

// LoadIntegration reads the integration credentials from the environment.
func LoadIntegration() (*Integration, error) {
	var integration Integration
	if err := envconfig.Process(IntegrationPrefix, &integration); err != nil {
		return nil, fmt.Errorf("failed to load %s integration settings: %w", IntegrationPrefix, err)
	}
	return &integration, nil
}

// HasCredentials reports whether the integration can authenticate on its own.
func (i *Integration) HasCredentials() bool {
	return i != nil && (i.AccessToken != "" || i.APIKey != "")
}

// Token returns the integration's bearer token, or nil.
func (i *Integration) Token() *oauth2.Token {
	if i == nil || i.AccessToken == "" {
		return nil
	}
	token := &oauth2.Token{
		AccessToken:  i.AccessToken,
		RefreshToken: i.RefreshToken,
		TokenType:    "Bearer",
	}
	if i.TokenTTL > 0 {
		token.Expiry = time.Now().Add(i.TokenTTL)
	}
	return token
}

// OAuthConfig builds the OAuth client configuration.
func (i *Integration) OAuthConfig() (*oauth2.Config, error) {
	if i == nil || i.ClientID == "" || i.ClientSecret == "" {
		return nil, ErrNoClientCredentials
	}

	redirect := i.RedirectURL
	if redirect == "" {
		redirect = oobRedirectURL
	}

	scopes := DefaultOAuthScopes
	if i.ReadOnly {
		scopes = ReadOnlyOAuthScopes
	}

	return &oauth2.Config{
		ClientID:     i.ClientID,
		ClientSecret: i.ClientSecret,
		Endpoint:     oauthEndpoint(),
		RedirectURL:  redirect,
		Scopes:       scopes,
	}, nil
}
