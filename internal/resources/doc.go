// Package resources provides MCP resources for exposing calendar data.
// Resources are read-only data sources that MCP clients can fetch without
// calling a tool: the user's calendars, their settings and the color
// palettes.
//
// Resources are scoped to the request's account. Over HTTP with a forwarded
// Google token each user sees their own data; over STDIO the default account
// is used.
package resources
