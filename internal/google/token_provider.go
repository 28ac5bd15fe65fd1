package google

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs
// This abstraction allows different token sources (file-based, forwarded tokens, environment)
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider provides tokens from disk files (for STDIO transport)
type FileTokenProvider struct{}

// NewFileTokenProvider creates a new file-based token provider
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetTokenForAccount retrieves a token from disk for the specified account
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// StoreTokenProvider serves tokens that were forwarded to the HTTP
// transport and saved in an mcp-oauth token store.
type StoreTokenProvider struct {
	store storage.TokenStore
}

// NewStoreTokenProvider creates a new token provider from an mcp-oauth TokenStore.
func NewStoreTokenProvider(store storage.TokenStore) *StoreTokenProvider {
	return &StoreTokenProvider{store: store}
}

// GetTokenForAccount retrieves the stored token for the account.
func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	token, err := p.store.GetToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no forwarded token for account %s: %w", account, err)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists for the specified account.
func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := p.store.GetToken(ctx, account)
	return err == nil
}

// SaveToken stores a token for the account.
func (p *StoreTokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, account, token)
}

// ChainTokenProvider asks each provider in turn.
type ChainTokenProvider []TokenProvider

// GetTokenForAccount returns the token of the first provider holding one.
func (c ChainTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	for _, p := range c {
		if p != nil && p.HasTokenForAccount(account) {
			return p.GetTokenForAccount(ctx, account)
		}
	}
	return nil, fmt.Errorf("no Google OAuth token found for account %s", account)
}

// HasTokenForAccount reports whether any provider holds a token.
func (c ChainTokenProvider) HasTokenForAccount(account string) bool {
	for _, p := range c {
		if p != nil && p.HasTokenForAccount(account) {
			return true
		}
	}
	return false
}
