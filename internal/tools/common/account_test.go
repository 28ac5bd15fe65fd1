package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/gcal-mcp/internal/server"
)

func TestGetAccountFromArgs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "no account specified returns default",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name: "account specified returns account",
			args: map[string]interface{}{
				"account": "work",
			},
			expected: "work",
		},
		{
			name: "empty account returns default",
			args: map[string]interface{}{
				"account": "",
			},
			expected: "default",
		},
		{
			name:     "nil args returns default",
			args:     nil,
			expected: "default",
		},
		{
			name: "non-string account type returns default",
			args: map[string]interface{}{
				"account": 123,
			},
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(ctx, tt.args))
		})
	}
}

func TestGetAccountFromArgs_ForwardedAccountWins(t *testing.T) {
	ctx := server.WithAccount(context.Background(), "alice@example.com")

	assert.Equal(t, "alice@example.com", GetAccountFromArgs(ctx, map[string]interface{}{"account": "work"}))
	assert.Equal(t, "alice@example.com", GetAccountFromArgs(ctx, nil))
}

func TestGetAccountFromArgs_HTTPIgnoresAccountArgument(t *testing.T) {
	ctx := server.WithHTTPRequest(context.Background())

	assert.Equal(t, "default", GetAccountFromArgs(ctx, map[string]interface{}{"account": "alice"}))
	assert.Equal(t, "fwd-1", GetAccountFromArgs(server.WithAccount(ctx, "fwd-1"), map[string]interface{}{"account": "alice"}))
}
