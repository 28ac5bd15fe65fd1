// Package batch provides helpers for tools that act on several calendar
// resources in one call.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single IDs and arrays
//   - Running one Calendar API call per ID with partial failures
//   - Formatting batch results in a consistent JSON structure
package batch
