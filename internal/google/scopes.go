package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP functionality.
//
// The scopes provide access to:
//   - Google Calendar: calendars, events, ACL rules, settings
//   - OpenID Connect: the user's email address
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	calendar.CalendarScope,
	calendar.CalendarEventsScope,
}

// ReadOnlyOAuthScopes are requested when the server runs without write tools.
var ReadOnlyOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	calendar.CalendarReadonlyScope,
	calendar.CalendarEventsReadonlyScope,
}
