package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gcal-mcp/internal/calendar"
)

// JSONResult renders v as indented JSON.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult turns an adapter error into a tool error result. action
// describes what failed, e.g. "get event".
func ErrorResult(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(ErrorMessage(action, err))
}

// ErrorMessage describes err for the caller of a tool.
func ErrorMessage(action string, err error) string {
	if errors.Is(err, calendar.ErrInvalidArgument) {
		return fmt.Sprintf("Failed to %s: %v", action, err)
	}

	if status := calendar.APIStatus(err); status != 0 {
		msg := calendar.APIMessage(err)
		if msg == "" {
			msg = http.StatusText(status)
		}
		hint := ""
		switch status {
		case http.StatusUnauthorized:
			hint = " (the Google token is missing or expired)"
		case http.StatusForbidden:
			hint = " (the account lacks permission or the scope was not granted)"
		case http.StatusNotFound:
			hint = " (check the calendar and resource IDs)"
		case http.StatusTooManyRequests:
			hint = " (rate limit exceeded, try again later)"
		}
		return fmt.Sprintf("Failed to %s: Google Calendar API returned %d: %s%s", action, status, msg, hint)
	}

	return fmt.Sprintf("Failed to %s: %v", action, err)
}
