// Package logging holds the slog helpers shared by the calendar adapter,
// the MCP tools and the HTTP transport.
//
// Attribute constructors keep key names consistent across packages:
//
//	logger := logging.WithOperation(slog.Default(), "events.list")
//	logger.Info("listed events",
//	    logging.CalendarID(calendarID),
//	    logging.Status(logging.StatusSuccess))
//
// Calendar IDs that look like email addresses are hashed, and tokens are
// only ever logged through SanitizeToken.
package logging
