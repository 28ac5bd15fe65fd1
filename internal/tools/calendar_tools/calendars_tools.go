package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

func calendarFieldOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		objectOption("calendar", "Calendar resource as defined by the Calendar API.", false),
		mcp.WithString("summary",
			mcp.Description("Title of the calendar"),
		),
		mcp.WithString("description",
			mcp.Description("Description of the calendar"),
		),
		mcp.WithString("location",
			mcp.Description("Geographic location of the calendar"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone of the calendar (e.g., 'Europe/Berlin')"),
		),
	}
}

// calendarArgument returns the "calendar" object if given, otherwise a
// calendar built from the flat fields. It returns nil when neither is set.
func calendarArgument(args map[string]interface{}) (*calendarapi.Calendar, error) {
	var cal calendarapi.Calendar
	ok, err := common.DecodeObject(args, "calendar", &cal)
	if err != nil {
		return nil, err
	}
	if ok {
		cal.ForceSendFields = common.PresentBoolFields(args, "calendar", map[string]string{
			"autoAcceptInvitations": "AutoAcceptInvitations",
		})
		return &cal, nil
	}

	cal = calendarapi.Calendar{
		Summary:     common.String(args, "summary"),
		Description: common.String(args, "description"),
		Location:    common.String(args, "location"),
		TimeZone:    common.String(args, "timeZone"),
	}
	if cal.Summary == "" && cal.Description == "" && cal.Location == "" && cal.TimeZone == "" {
		return nil, nil
	}
	return &cal, nil
}

// RegisterCalendarsTools registers tools for calendar metadata with the MCP server
func RegisterCalendarsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Get calendar tool
	getCalendarTool := mcp.NewTool("calendar_get_calendar",
		mcp.WithDescription("Get metadata of a calendar"),
		accountOption(),
		calendarIDOption(),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_calendar", "calendars.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCalendar(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createCalendarTool := newTool("calendar_create_calendar",
		"Create a secondary calendar. Requires a summary.",
		[]mcp.ToolOption{accountOption()},
		calendarFieldOptions(),
	)

	s.AddTool(createCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_create_calendar", "calendars.insert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateCalendar(ctx, request, sc)
		}))

	updateCalendarTool := newTool("calendar_update_calendar",
		"Replace the metadata of a calendar. Fields that are not given are cleared.",
		[]mcp.ToolOption{accountOption(), requiredCalendarIDOption()},
		calendarFieldOptions(),
	)

	s.AddTool(updateCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_update_calendar", "calendars.update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteCalendar(ctx, request, sc, false)
		}))

	patchCalendarTool := newTool("calendar_patch_calendar",
		"Update only the given metadata fields of a calendar",
		[]mcp.ToolOption{accountOption(), requiredCalendarIDOption()},
		calendarFieldOptions(),
	)

	s.AddTool(patchCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_patch_calendar", "calendars.patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteCalendar(ctx, request, sc, true)
		}))

	deleteCalendarTool := mcp.NewTool("calendar_delete_calendar",
		mcp.WithDescription("Delete a secondary calendar. Use calendar_clear_calendar for the primary calendar."),
		accountOption(),
		requiredCalendarIDOption(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(deleteCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_delete_calendar", "calendars.delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteCalendar(ctx, request, sc)
		}))

	clearCalendarTool := mcp.NewTool("calendar_clear_calendar",
		mcp.WithDescription("Delete all events of a primary calendar"),
		accountOption(),
		requiredCalendarIDOption(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(clearCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_clear_calendar", "calendars.clear", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClearCalendar(ctx, request, sc)
		}))

	return nil
}

func handleGetCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cal, err := client.GetCalendar(ctx, common.String(args, "calendarId"))
	if err != nil {
		return common.ErrorResult("get calendar", err), nil
	}

	if common.Bool(args, "raw") {
		return common.JSONResult(cal)
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Calendar: %s\n", cal.Summary)
	fmt.Fprintf(&result, "ID: %s\n", cal.Id)
	if cal.Description != "" {
		fmt.Fprintf(&result, "Description: %s\n", cal.Description)
	}
	if cal.Location != "" {
		fmt.Fprintf(&result, "Location: %s\n", cal.Location)
	}
	if cal.TimeZone != "" {
		fmt.Fprintf(&result, "Time Zone: %s\n", cal.TimeZone)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func handleCreateCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	cal, err := calendarArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cal == nil {
		return mcp.NewToolResultError("calendar or summary is required"), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := client.InsertCalendar(ctx, cal)
	if err != nil {
		return common.ErrorResult("create calendar", err), nil
	}
	return common.JSONResult(created)
}

func handleWriteCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, patch bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID, err := common.RequiredString(args, "calendarId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cal, err := calendarArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cal == nil {
		return mcp.NewToolResultError("nothing to update: pass calendar or at least one calendar field"), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if patch {
		patched, err := client.PatchCalendar(ctx, calendarID, cal)
		if err != nil {
			return common.ErrorResult("patch calendar", err), nil
		}
		return common.JSONResult(patched)
	}

	updated, err := client.UpdateCalendar(ctx, calendarID, cal)
	if err != nil {
		return common.ErrorResult("update calendar", err), nil
	}
	return common.JSONResult(updated)
}

func handleDeleteCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID, err := common.RequiredString(args, "calendarId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteCalendar(ctx, calendarID); err != nil {
		return common.ErrorResult("delete calendar", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Calendar %s deleted successfully", calendarID)), nil
}

func handleClearCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID, err := common.RequiredString(args, "calendarId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.ClearCalendar(ctx, calendarID); err != nil {
		return common.ErrorResult("clear calendar", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("All events of calendar %s deleted", calendarID)), nil
}
