package calendar_tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

// Shared parameter descriptions.
const (
	accountDescription     = "Account name (default: 'default'). Used to manage multiple Google accounts."
	calendarIDDescription  = "Calendar ID (default: 'primary'). Use calendar_list_calendars to find IDs."
	sendUpdatesDescription = "Who receives email notifications: 'all', 'externalOnly' or 'none'"
	rawDescription         = "Return the raw API response as JSON instead of a summary"
)

func accountOption() mcp.ToolOption {
	return mcp.WithString("account", mcp.Description(accountDescription))
}

func calendarIDOption() mcp.ToolOption {
	return mcp.WithString("calendarId", mcp.Description(calendarIDDescription))
}

func requiredCalendarIDOption() mcp.ToolOption {
	return mcp.WithString("calendarId", mcp.Required(), mcp.Description("Calendar ID"))
}

func sendUpdatesOption() mcp.ToolOption {
	return mcp.WithString("sendUpdates",
		mcp.Description(sendUpdatesDescription),
		mcp.Enum(calendar.SendUpdatesAll, calendar.SendUpdatesExternalOnly, calendar.SendUpdatesNone),
	)
}

func objectOption(name, description string, required bool) mcp.ToolOption {
	opts := []mcp.PropertyOption{mcp.Description(description + " Accepts a JSON object or a string containing one.")}
	if required {
		opts = append(opts, mcp.Required())
	}
	return mcp.WithAny(name, opts...)
}

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(account string, sc *server.ServerContext) (*calendar.Client, error) {
	return sc.CalendarClient(account)
}

// sendUpdates validates the sendUpdates argument.
func sendUpdates(args map[string]interface{}) (string, error) {
	v := common.String(args, "sendUpdates")
	switch v {
	case "", calendar.SendUpdatesAll, calendar.SendUpdatesExternalOnly, calendar.SendUpdatesNone:
		return v, nil
	}
	return "", fmt.Errorf("invalid sendUpdates %q: expected 'all', 'externalOnly' or 'none'", v)
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP
// server. Tools that modify data or open notification channels are left
// out in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	if err := RegisterCalendarsTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}

	if err := RegisterCalendarListTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	if err := RegisterACLTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register ACL tools: %w", err)
	}

	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	if err := RegisterSettingsTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register settings tools: %w", err)
	}

	if !readOnly {
		if err := RegisterChannelTools(s, sc); err != nil {
			return fmt.Errorf("failed to register channel tools: %w", err)
		}
	}

	return nil
}
