package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	"golang.org/x/oauth2"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/instrumentation"
	"github.com/teemow/gcal-mcp/internal/logging"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	clients map[string]*calendar.Client // Maps account name to Calendar client

	integration     *google.Integration
	forwardedTokens *google.StoreTokenProvider
	tokenProvider   google.TokenProvider
	stopStore       func()

	instrumentation *instrumentation.Provider
	audit           *instrumentation.AuditLogger
	clientOptions   []calendar.ClientOption
	readOnly        bool

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithIntegration sets the environment credential store.
func WithIntegration(integration *google.Integration) Option {
	return func(sc *ServerContext) {
		sc.integration = integration
	}
}

// WithTokenStore keeps forwarded tokens in store instead of a private
// in-memory store.
func WithTokenStore(store storage.TokenStore) Option {
	return func(sc *ServerContext) {
		sc.forwardedTokens = google.NewStoreTokenProvider(store)
	}
}

// WithInstrumentation records Calendar API metrics and spans through provider.
func WithInstrumentation(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) {
		sc.instrumentation = provider
	}
}

// WithAuditLogger sets the audit logger used by the tools.
func WithAuditLogger(audit *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.audit = audit
	}
}

// WithReadOnly marks the server as read-only.
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) {
		sc.readOnly = readOnly
	}
}

// WithClientOptions adds options to every Calendar client the context creates.
func WithClientOptions(opts ...calendar.ClientOption) Option {
	return func(sc *ServerContext) {
		sc.clientOptions = append(sc.clientOptions, opts...)
	}
}

// NewServerContext creates a new server context. Clients are created lazily
// on first use.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		clients: make(map[string]*calendar.Client),
	}
	for _, opt := range opts {
		opt(sc)
	}

	if sc.forwardedTokens == nil {
		store := memory.New()
		sc.stopStore = store.Stop
		sc.forwardedTokens = google.NewStoreTokenProvider(store)
	}
	sc.tokenProvider = google.ChainTokenProvider{sc.forwardedTokens, google.NewFileTokenProvider()}

	if sc.instrumentation != nil {
		metrics := sc.instrumentation.Metrics()
		sc.clientOptions = append(sc.clientOptions, calendar.WithTransportWrapper(func(rt http.RoundTripper) http.RoundTripper {
			return instrumentation.NewTransport(rt, metrics)
		}))
	}
	if sc.audit == nil {
		sc.audit = instrumentation.NewAuditLogger(slog.Default(), instrumentation.AuditLoggingConfig{})
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Integration returns the environment credential store. It may be nil.
func (sc *ServerContext) Integration() *google.Integration {
	return sc.integration
}

// TokenProvider returns the provider consulted for per-account tokens:
// forwarded tokens first, then the on-disk cache.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Metrics returns the metrics recorder. It is never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.instrumentation.Metrics()
}

// AuditLogger returns the audit logger.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// CalendarClient returns the Calendar client for account, creating and
// caching it on first use.
func (sc *ServerContext) CalendarClient(account string) (*calendar.Client, error) {
	if account == "" {
		account = calendar.DefaultAccount
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if client, ok := sc.clients[account]; ok {
		return client, nil
	}

	client, err := calendar.NewClientForIntegration(sc.ctx, account, sc.integration, sc.tokenProvider, sc.clientOptions...)
	if err != nil {
		slog.Debug("no calendar client for account", logging.Account(account), logging.Err(err))
		return nil, errors.New(google.GetAuthenticationErrorMessage(account))
	}

	sc.clients[account] = client
	return client, nil
}

// SetCalendarClient sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClient(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clients[account] = client
}

// SaveForwardedToken stores a token that arrived with an HTTP request and
// drops the cached client of the account so the next call uses it.
func (sc *ServerContext) SaveForwardedToken(ctx context.Context, account string, token *oauth2.Token) error {
	if current, err := sc.forwardedTokens.GetTokenForAccount(ctx, account); err == nil && current.AccessToken == token.AccessToken {
		return nil
	}

	if err := sc.forwardedTokens.SaveToken(ctx, account, token); err != nil {
		return fmt.Errorf("failed to store forwarded token: %w", err)
	}

	sc.ResetCalendarClient(account)
	return nil
}

// ResetCalendarClient drops the cached client of account, for example after
// a new token was saved for it.
func (sc *ServerContext) ResetCalendarClient(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.clients, account)
}

// CachedAccounts returns the number of accounts with a cached client.
func (sc *ServerContext) CachedAccounts() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.clients)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.clients = make(map[string]*calendar.Client)
	if sc.stopStore != nil {
		sc.stopStore()
	}
	return nil
}
