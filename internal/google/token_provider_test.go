package google

import (
	"context"
	"testing"
	"time"

	"github.com/giantswarm/mcp-oauth/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestStoreTokenProvider(t *testing.T) {
	store := memory.New()
	defer store.Stop()

	provider := NewStoreTokenProvider(store)
	ctx := context.Background()
	account := "alice@example.com"

	assert.False(t, provider.HasTokenForAccount(account))
	_, err := provider.GetTokenForAccount(ctx, account)
	assert.Error(t, err)

	token := &oauth2.Token{
		AccessToken:  "forwarded",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, provider.SaveToken(ctx, account, token))

	assert.True(t, provider.HasTokenForAccount(account))
	got, err := provider.GetTokenForAccount(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, "forwarded", got.AccessToken)
}

type fakeProvider struct {
	tokens map[string]string
}

func (f fakeProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: f.tokens[account]}, nil
}

func (f fakeProvider) HasTokenForAccount(account string) bool {
	_, ok := f.tokens[account]
	return ok
}

func TestChainTokenProvider(t *testing.T) {
	chain := ChainTokenProvider{
		nil,
		fakeProvider{tokens: map[string]string{"work": "first"}},
		fakeProvider{tokens: map[string]string{"work": "second", "home": "home-token"}},
	}
	ctx := context.Background()

	token, err := chain.GetTokenForAccount(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "first", token.AccessToken)

	token, err = chain.GetTokenForAccount(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "home-token", token.AccessToken)

	assert.True(t, chain.HasTokenForAccount("home"))
	assert.False(t, chain.HasTokenForAccount("missing"))

	_, err = chain.GetTokenForAccount(ctx, "missing")
	assert.Error(t, err)
}
