// Package common provides shared utilities for MCP tool implementations:
// account resolution, argument parsing, result rendering and the
// instrumentation wrapper every tool is registered with.
package common
