// Package google_tools provides MCP tools for Google OAuth authentication.
//
// This package registers OAuth-related tools that allow AI assistants to:
//   - Get the OAuth authorization URL for Google Calendar
//   - Save the OAuth authorization code to complete authentication
//
// Tokens are stored per account in the user's cache directory and refreshed
// automatically. The tools need GOOGLE_CALENDAR_CLIENT_ID and
// GOOGLE_CALENDAR_CLIENT_SECRET; deployments that forward Google tokens over
// HTTP do not use them.
//
// The OAuth flow:
//  1. Call google_get_auth_url to get the authorization URL
//  2. User visits the URL and authorizes access
//  3. User provides the authorization code
//  4. Call google_save_auth_code with the code to save the token
package google_tools
