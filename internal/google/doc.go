// Package google provides OAuth2 authentication and token management for the Google Calendar API.
//
// Credentials come from three places: the GOOGLE_CALENDAR_* environment
// (see Integration), tokens cached on disk by the OAuth code flow (for STDIO
// transport), and tokens forwarded to the HTTP transport and kept in an
// mcp-oauth token store.
//
// The TokenProvider interface lets these sources be combined and plugged
// into the calendar client.
package google
