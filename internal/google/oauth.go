package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	appName = "gcal-mcp"

	// oobRedirectURL makes Google display the authorization code to the
	// user instead of redirecting.
	oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"
)

// ErrNoClientCredentials is returned when no OAuth client is configured.
var ErrNoClientCredentials = errors.New("no OAuth client configured: set GOOGLE_CALENDAR_CLIENT_ID and GOOGLE_CALENDAR_CLIENT_SECRET")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// GetOAuthConfig returns the OAuth2 configuration for the Calendar API,
// using the client credentials from the environment.
func GetOAuthConfig() (*oauth2.Config, error) {
	integration, err := LoadIntegration()
	if err != nil {
		return nil, err
	}
	return integration.OAuthConfig()
}

// GetAuthURLForAccount returns the URL the user visits to authorize access
// for an account.
func GetAuthURLForAccount(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	conf, err := GetOAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state-"+account, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// SaveTokenForAccount exchanges an authorization code for tokens and caches
// them on disk for the account.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	conf, err := GetOAuthConfig()
	if err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeTokenFile(account, token)
}

// HasTokenForAccount checks if a cached token exists for the account
func HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// GetTokenSourceForAccount returns a refreshing token source for the cached
// token of an account.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	token, err := readTokenFile(account)
	if err != nil {
		return nil, err
	}

	conf, err := GetOAuthConfig()
	if err != nil {
		return oauth2.StaticTokenSource(token), nil
	}
	return conf.TokenSource(ctx, token), nil
}

// GetAuthenticationErrorMessage explains how to authenticate an account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(`Google OAuth token not found for account "%s".

To authorize Google Calendar access:
1. Call the google_get_auth_url tool with account "%s" and open the URL
2. Grant access and copy the authorization code
3. Call the google_save_auth_code tool with the code

Alternatively run: %s auth --account %s`, account, account, appName, account)
}

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

func getTokenFilePath(account string) string {
	return filepath.Join(tokenCacheDir(), fmt.Sprintf("google-%s.token", account))
}

func tokenCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName)
}

func readTokenFile(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s", account)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	return &token, nil
}

func writeTokenFile(account string, token *oauth2.Token) error {
	if err := os.MkdirAll(tokenCacheDir(), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(getTokenFilePath(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func oauthEndpoint() oauth2.Endpoint {
	return google.Endpoint
}
