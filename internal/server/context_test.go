package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
)

// isolateCredentials keeps tests away from the developer's token cache and
// environment.
func isolateCredentials(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv(google.IntegrationPrefix+"_CLIENT_ID", "")
	t.Setenv(google.IntegrationPrefix+"_CLIENT_SECRET", "")
}

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestServerContext_CalendarClient_NoCredentials(t *testing.T) {
	isolateCredentials(t)
	sc := newTestServerContext(t)

	_, err := sc.CalendarClient("work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work")
	assert.Equal(t, 0, sc.CachedAccounts())
}

func TestServerContext_CalendarClient_Integration(t *testing.T) {
	isolateCredentials(t)
	sc := newTestServerContext(t, WithIntegration(&google.Integration{APIKey: "key-1"}))

	client, err := sc.CalendarClient("")
	require.NoError(t, err)
	assert.Equal(t, calendar.DefaultAccount, client.Account())

	again, err := sc.CalendarClient(calendar.DefaultAccount)
	require.NoError(t, err)
	assert.Same(t, client, again)
	assert.Equal(t, 1, sc.CachedAccounts())
}

func TestServerContext_ForwardedToken(t *testing.T) {
	isolateCredentials(t)

	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"calendar#colors"}`))
	}))
	defer upstream.Close()

	sc := newTestServerContext(t, WithClientOptions(calendar.WithEndpoint(upstream.URL+"/calendar/v3/")))
	ctx := context.Background()

	require.NoError(t, sc.SaveForwardedToken(ctx, "alice@example.com", &oauth2.Token{AccessToken: "first", TokenType: "Bearer"}))
	client, err := sc.CalendarClient("alice@example.com")
	require.NoError(t, err)
	_, err = client.GetColors(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer first", gotAuth)

	// Saving the same token keeps the cached client.
	require.NoError(t, sc.SaveForwardedToken(ctx, "alice@example.com", &oauth2.Token{AccessToken: "first", TokenType: "Bearer"}))
	cached, err := sc.CalendarClient("alice@example.com")
	require.NoError(t, err)
	assert.Same(t, client, cached)

	// A new token replaces the client.
	require.NoError(t, sc.SaveForwardedToken(ctx, "alice@example.com", &oauth2.Token{AccessToken: "second", TokenType: "Bearer"}))
	client, err = sc.CalendarClient("alice@example.com")
	require.NoError(t, err)
	_, err = client.GetColors(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer second", gotAuth)
}

func TestServerContext_SetCalendarClient(t *testing.T) {
	sc := newTestServerContext(t)

	client := calendar.NewClientWithService(&calendarapi.Service{}, "work")
	sc.SetCalendarClient("work", client)

	got, err := sc.CalendarClient("work")
	require.NoError(t, err)
	assert.Same(t, client, got)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t, WithReadOnly(true))
	assert.True(t, sc.ReadOnly())
	assert.NotNil(t, sc.Metrics())
	assert.NotNil(t, sc.AuditLogger())
	assert.NotNil(t, sc.TokenProvider())

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Idempotent
	require.NoError(t, sc.Shutdown())

	_, err := sc.CalendarClient("default")
	assert.Error(t, err)
}
