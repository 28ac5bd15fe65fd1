package google_tools

import (
	"context"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/server"
)

func setupCredentials(t *testing.T, clientID string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	for _, key := range []string{"CLIENT_ID", "CLIENT_SECRET", "REDIRECT_URL"} {
		name := google.IntegrationPrefix + "_" + key
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	if clientID != "" {
		t.Setenv(google.IntegrationPrefix+"_CLIENT_ID", clientID)
		t.Setenv(google.IntegrationPrefix+"_CLIENT_SECRET", "secret")
	}
}

func newGoogleToolServer(t *testing.T) *mcpserver.MCPServer {
	t.Helper()
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("gcal-mcp-test", "0.0.0", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterGoogleTools(s, sc))
	return s
}

func call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) (bool, string) {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)

	text := ""
	if len(result.Content) > 0 {
		if c, ok := result.Content[0].(mcp.TextContent); ok {
			text = c.Text
		}
	}
	return result.IsError, text
}

func TestGetAuthURL(t *testing.T) {
	setupCredentials(t, "client-123")
	s := newGoogleToolServer(t)

	isError, text := call(t, s, "google_get_auth_url", map[string]interface{}{"account": "work"})

	require.False(t, isError, text)
	assert.Contains(t, text, `account "work"`)
	assert.Contains(t, text, "client_id=client-123")
	assert.Contains(t, text, "google_save_auth_code")
}

func TestGetAuthURL_NoClientCredentials(t *testing.T) {
	setupCredentials(t, "")
	s := newGoogleToolServer(t)

	isError, text := call(t, s, "google_get_auth_url", nil)

	assert.True(t, isError)
	assert.Equal(t, noCredentialsMessage, text)
}

func TestGetAuthURL_InvalidAccount(t *testing.T) {
	setupCredentials(t, "client-123")
	s := newGoogleToolServer(t)

	isError, text := call(t, s, "google_get_auth_url", map[string]interface{}{"account": "bad account"})

	assert.True(t, isError)
	assert.Contains(t, text, "bad account")
}

func TestSaveAuthCode_Validation(t *testing.T) {
	setupCredentials(t, "")
	s := newGoogleToolServer(t)

	isError, text := call(t, s, "google_save_auth_code", map[string]interface{}{})
	assert.True(t, isError)
	assert.Equal(t, "authCode is required", text)

	isError, text = call(t, s, "google_save_auth_code", map[string]interface{}{"authCode": "4/abc"})
	assert.True(t, isError)
	assert.Equal(t, noCredentialsMessage, text)
}

func TestRegisterGoogleTools(t *testing.T) {
	setupCredentials(t, "")
	s := newGoogleToolServer(t)

	assert.NotNil(t, s.GetTool("google_get_auth_url"))
	assert.NotNil(t, s.GetTool("google_save_auth_code"))
	assert.Len(t, s.ListTools(), 2)
}
