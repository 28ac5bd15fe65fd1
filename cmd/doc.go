// Package cmd implements the command-line interface for gcal-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Calendar tools for AI assistants
//   - agenda: Print upcoming events to the terminal
//   - auth: Authorize an account and cache its token
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Running gcal-mcp without a subcommand prints the usage.
package cmd
