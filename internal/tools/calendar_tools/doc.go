// Package calendar_tools provides MCP (Model Context Protocol) tools for Google Calendar operations.
//
// The tools cover events, calendars, the user's calendar list, access
// control rules, free/busy queries, colors, settings and push notification
// channels. Read tools return a human-readable summary by default and the
// raw API resource when called with raw=true. Write tools return the
// resource the API sent back as JSON.
//
// Every tool accepts an optional account argument. When the HTTP transport
// forwarded a Google token the request's account is used instead. In
// read-only mode only the tools that neither modify data nor open
// notification channels are registered.
package calendar_tools
