package common

import (
	"context"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
)

// GetAccountFromArgs returns the account a tool call acts for.
//
// Priority order:
//  1. Account bound to the HTTP request by a forwarded token
//  2. Explicit "account" argument, except for calls over HTTP
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}
	if server.IsHTTPRequest(ctx) {
		return calendar.DefaultAccount
	}

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return calendar.DefaultAccount
}
