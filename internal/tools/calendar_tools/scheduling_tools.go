package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

const defaultSlotResults = 10

// RegisterSchedulingTools registers scheduling and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Query free/busy tool
	queryFreeBusyTool := mcp.NewTool("calendar_query_freebusy",
		mcp.WithDescription("Check availability for one or more calendars/attendees in a time range"),
		accountOption(),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339 format, e.g., '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339 format, e.g., '2025-01-31T23:59:59Z')"),
		),
		mcp.WithString("calendars",
			mcp.Required(),
			mcp.Description("Comma-separated list of calendar IDs, email addresses or group IDs to check"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone used in the response (default: UTC)"),
		),
		mcp.WithNumber("groupExpansionMax",
			mcp.Description("Maximum number of calendars to expand per group (at most 100)"),
		),
		mcp.WithNumber("calendarExpansionMax",
			mcp.Description("Maximum number of calendars to return busy times for (at most 50)"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(queryFreeBusyTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_query_freebusy", "freebusy.query", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	// Find available time tool
	findAvailableTimeTool := mcp.NewTool("calendar_find_available_time",
		mcp.WithDescription("Find available time slots for scheduling a meeting with one or more attendees"),
		accountOption(),
		mcp.WithString("attendees",
			mcp.Required(),
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for search range (RFC3339 format, e.g., '2025-01-01T09:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for search range (RFC3339 format, e.g., '2025-01-01T17:00:00Z')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of available slots to return (default: 10)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(findAvailableTimeTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_find_available_time", "freebusy.query", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindAvailableTime(ctx, request, sc)
		}))

	return nil
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, err := common.RequiredString(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.RequiredString(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendars, err := common.StringList(args, "calendars")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(calendars) == 0 {
		return mcp.NewToolResultError("calendars is required"), nil
	}
	groupExpansionMax, err := common.Int(args, "groupExpansionMax", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendarExpansionMax, err := common.Int(args, "calendarExpansionMax", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := client.QueryFreeBusy(ctx, calendar.FreeBusyOptions{
		TimeMin:              timeMin,
		TimeMax:              timeMax,
		Items:                calendars,
		TimeZone:             common.String(args, "timeZone"),
		GroupExpansionMax:    groupExpansionMax,
		CalendarExpansionMax: calendarExpansionMax,
	})
	if err != nil {
		return common.ErrorResult("query free/busy", err), nil
	}

	if common.Bool(args, "raw") {
		return common.JSONResult(resp)
	}

	freeBusyInfos := calendar.SummarizeFreeBusy(resp)

	var result strings.Builder
	fmt.Fprintf(&result, "Free/Busy information for %d calendar(s):\n\n", len(freeBusyInfos))
	for _, info := range freeBusyInfos {
		fmt.Fprintf(&result, "Calendar: %s\n", info.Calendar)

		if len(info.Errors) > 0 {
			fmt.Fprintf(&result, "  Errors: %s\n", strings.Join(info.Errors, ", "))
		}

		if len(info.Busy) == 0 {
			result.WriteString("  Status: FREE for entire range\n")
		} else {
			fmt.Fprintf(&result, "  Busy periods: %d\n", len(info.Busy))
			for i, busy := range info.Busy {
				fmt.Fprintf(&result, "  %d. %s to %s\n",
					i+1,
					busy.Start.Format("2006-01-02 15:04"),
					busy.End.Format("2006-01-02 15:04"))
			}
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func handleFindAvailableTime(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	attendees, err := common.StringList(args, "attendees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(attendees) == 0 {
		return mcp.NewToolResultError("attendees is required"), nil
	}

	durationMinutes, err := common.Int(args, "durationMinutes", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if durationMinutes <= 0 {
		return mcp.NewToolResultError("durationMinutes is required and must be positive"), nil
	}
	duration := time.Duration(durationMinutes) * time.Minute

	timeMin, err := common.Time(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.Time(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timeMin.IsZero() || timeMax.IsZero() {
		return mcp.NewToolResultError("timeMin and timeMax are required"), nil
	}

	maxResults, err := common.Int(args, "maxResults", defaultSlotResults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slots, err := client.FindAvailableSlots(ctx, attendees, duration, timeMin, timeMax, int(maxResults))
	if err != nil {
		return common.ErrorResult("find available time", err), nil
	}

	if len(slots) == 0 {
		return mcp.NewToolResultText("No available time slots found for the specified criteria"), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d available time slot(s) for %d minute meeting:\n\n",
		len(slots), durationMinutes)

	for i, slot := range slots {
		fmt.Fprintf(&result, "%d. %s to %s (%s)\n",
			i+1,
			slot.Start.Format("Mon, Jan 2 at 3:04 PM"),
			slot.End.Format("3:04 PM MST"),
			slot.Start.Weekday())
	}

	return mcp.NewToolResultText(result.String()), nil
}
