package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"

	"github.com/teemow/gcal-mcp/internal/google"
)

const (
	// BaseURL is the root of the Google Calendar v3 REST API.
	BaseURL = "https://www.googleapis.com/calendar/v3/"

	// PrimaryCalendarID addresses the authenticated user's primary calendar.
	PrimaryCalendarID = "primary"

	// DefaultAccount is used when no account is specified.
	DefaultAccount = "default"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string // The account this client is associated with

	now func() time.Time
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientWithService wraps an already configured Calendar service.
func NewClientWithService(svc *calendar.Service, account string) *Client {
	if account == "" {
		account = DefaultAccount
	}
	return &Client{
		svc:     svc,
		account: account,
		now:     time.Now,
	}
}

// ClientOption customizes how a Client reaches the Calendar API.
type ClientOption func(*clientConfig)

type clientConfig struct {
	wrappers []func(http.RoundTripper) http.RoundTripper
	endpoint string
}

// WithTransportWrapper wraps the outbound transport below the credential
// layer. Wrappers apply in order, the first one being innermost.
func WithTransportWrapper(wrap func(http.RoundTripper) http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.wrappers = append(c.wrappers, wrap)
	}
}

// WithEndpoint overrides BaseURL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

func newClientConfig(opts []ClientOption) *clientConfig {
	c := &clientConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// baseTransport returns the HTTP/1.1 transport with all wrappers applied.
func (c *clientConfig) baseTransport() http.RoundTripper {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ForceAttemptHTTP2 = false

	var rt http.RoundTripper = base
	for _, wrap := range c.wrappers {
		rt = wrap(rt)
	}
	return rt
}

func (c *clientConfig) newService(ctx context.Context, rt http.RoundTripper) (*calendar.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(&http.Client{Transport: rt})}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a token file exists for the specified account
func HasTokenForAccount(account string) bool {
	return HasTokenForAccountWithProvider(account, google.NewFileTokenProvider())
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2 authentication for a specific account.
// The OAuth token is retrieved from the provided token provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider, opts ...ClientOption) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf, err := google.GetOAuthConfig()
	if err != nil {
		// Without client credentials the token cannot be refreshed, but it
		// is still usable until it expires.
		return newClientWithTokenSource(ctx, account, oauth2.StaticTokenSource(token), opts)
	}
	return newClientWithTokenSource(ctx, account, conf.TokenSource(ctx, token), opts)
}

// NewClientForAccount creates a new Calendar client for a specific account
// using the file-based token cache.
func NewClientForAccount(ctx context.Context, account string, opts ...ClientOption) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider(), opts...)
}

// NewClientWithAPIKey creates a client authenticated by API key. Only public
// calendar data is reachable this way.
func NewClientWithAPIKey(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidArgument)
	}

	conf := newClientConfig(opts)
	svc, err := conf.newService(ctx, &transport.APIKey{Key: apiKey, Transport: conf.baseTransport()})
	if err != nil {
		return nil, err
	}
	return NewClientWithService(svc, DefaultAccount), nil
}

// NewClientForIntegration picks the credential for account in this order:
// a bearer token from the integration, a token from the provider, then the
// integration's API key.
func NewClientForIntegration(ctx context.Context, account string, integration *google.Integration, provider google.TokenProvider, opts ...ClientOption) (*Client, error) {
	if integration != nil && integration.AccessToken != "" {
		return newClientWithTokenSource(ctx, account, oauth2.StaticTokenSource(integration.Token()), opts)
	}

	if HasTokenForAccountWithProvider(account, provider) {
		return NewClientForAccountWithProvider(ctx, account, provider, opts...)
	}

	if integration != nil && integration.APIKey != "" {
		client, err := NewClientWithAPIKey(ctx, integration.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		client.account = account
		return client, nil
	}

	return nil, fmt.Errorf("no Google Calendar credentials available for account %s", account)
}

func newClientWithTokenSource(ctx context.Context, account string, ts oauth2.TokenSource, opts []ClientOption) (*Client, error) {
	conf := newClientConfig(opts)
	svc, err := conf.newService(ctx, &oauth2.Transport{
		Source: ts,
		Base:   conf.baseTransport(),
	})
	if err != nil {
		return nil, err
	}
	return NewClientWithService(svc, account), nil
}

func calendarOrPrimary(calendarID string) string {
	if calendarID == "" {
		return PrimaryCalendarID
	}
	return calendarID
}
