package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

func calendarListEntryOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		objectOption("entry", "Calendar list entry resource as defined by the Calendar API.", false),
		mcp.WithString("summaryOverride",
			mcp.Description("Title shown to this user instead of the calendar's summary"),
		),
		mcp.WithString("colorId",
			mcp.Description("Color ID from calendar_get_colors"),
		),
		mcp.WithString("backgroundColor",
			mcp.Description("Background color in hex format (e.g., '#0088aa'). Overrides colorId."),
		),
		mcp.WithString("foregroundColor",
			mcp.Description("Foreground color in hex format. Overrides colorId."),
		),
		mcp.WithBoolean("hidden",
			mcp.Description("Hide the calendar from the list"),
		),
		mcp.WithBoolean("selected",
			mcp.Description("Show the calendar's events in the calendar UI"),
		),
		mcp.WithBoolean("colorRgbFormat",
			mcp.Description("Use backgroundColor/foregroundColor instead of colorId (set automatically when a hex color is given)"),
		),
	}
}

// calendarListEntryArgument returns the entry and whether RGB colors must
// be requested.
func calendarListEntryArgument(args map[string]interface{}) (*calendarapi.CalendarListEntry, bool, error) {
	var entry calendarapi.CalendarListEntry
	ok, err := common.DecodeObject(args, "entry", &entry)
	if err != nil {
		return nil, false, err
	}

	if ok {
		entry.ForceSendFields = common.PresentBoolFields(args, "entry", map[string]string{
			"hidden":   "Hidden",
			"selected": "Selected",
		})
	} else {
		entry = calendarapi.CalendarListEntry{
			SummaryOverride: common.String(args, "summaryOverride"),
			ColorId:         common.String(args, "colorId"),
			BackgroundColor: common.String(args, "backgroundColor"),
			ForegroundColor: common.String(args, "foregroundColor"),
			Hidden:          common.Bool(args, "hidden"),
			Selected:        common.Bool(args, "selected"),
		}
		// Explicit false values must reach a patch request.
		if _, set := args["hidden"]; set && !entry.Hidden {
			entry.ForceSendFields = append(entry.ForceSendFields, "Hidden")
		}
		if _, set := args["selected"]; set && !entry.Selected {
			entry.ForceSendFields = append(entry.ForceSendFields, "Selected")
		}
	}

	rgb := common.Bool(args, "colorRgbFormat") || entry.BackgroundColor != "" || entry.ForegroundColor != ""
	return &entry, rgb, nil
}

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List calendars tool
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List all calendars accessible to the user"),
		accountOption(),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of calendars to return"),
		),
		mcp.WithString("minAccessRole",
			mcp.Description("Only calendars where the user has at least this role"),
			mcp.Enum(calendar.RoleFreeBusyReader, calendar.RoleReader, calendar.RoleWriter, calendar.RoleOwner),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include deleted entries"),
		),
		mcp.WithBoolean("showHidden",
			mcp.Description("Include hidden entries"),
		),
		mcp.WithString("syncToken",
			mcp.Description("Token from a previous list call to return only changed entries"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_list_calendars", "calendarList.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	getEntryTool := mcp.NewTool("calendar_get_calendar_list_entry",
		mcp.WithDescription("Get the user's settings for a calendar in their calendar list"),
		accountOption(),
		calendarIDOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getEntryTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_calendar_list_entry", "calendarList.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCalendarListEntry(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	addEntryTool := newTool("calendar_add_calendar_list_entry",
		"Subscribe to an existing calendar by adding it to the user's calendar list",
		[]mcp.ToolOption{accountOption(), requiredCalendarIDOption()},
		calendarListEntryOptions(),
	)

	s.AddTool(addEntryTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_add_calendar_list_entry", "calendarList.insert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddCalendarListEntry(ctx, request, sc)
		}))

	updateEntryTool := newTool("calendar_update_calendar_list_entry",
		"Replace the user's settings for a calendar. Settings that are not given are reset.",
		[]mcp.ToolOption{accountOption(), requiredCalendarIDOption()},
		calendarListEntryOptions(),
	)

	s.AddTool(updateEntryTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_update_calendar_list_entry", "calendarList.update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteCalendarListEntry(ctx, request, sc, false)
		}))

	patchEntryTool := newTool("calendar_patch_calendar_list_entry",
		"Change only the given settings of a calendar in the user's calendar list",
		[]mcp.ToolOption{accountOption(), requiredCalendarIDOption()},
		calendarListEntryOptions(),
	)

	s.AddTool(patchEntryTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_patch_calendar_list_entry", "calendarList.patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteCalendarListEntry(ctx, request, sc, true)
		}))

	removeEntryTool := mcp.NewTool("calendar_remove_calendar_list_entry",
		mcp.WithDescription("Unsubscribe from a calendar by removing it from the user's calendar list"),
		accountOption(),
		requiredCalendarIDOption(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(removeEntryTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_remove_calendar_list_entry", "calendarList.delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveCalendarListEntry(ctx, request, sc)
		}))

	watchListTool := newTool("calendar_watch_calendar_list",
		"Open a push notification channel for changes to the user's calendar list",
		[]mcp.ToolOption{accountOption()},
		watchToolOptions(),
		[]mcp.ToolOption{
			mcp.WithString("syncToken",
				mcp.Description("Only notify about changes after this sync token"),
			),
			mcp.WithBoolean("showDeleted",
				mcp.Description("Include deleted entries"),
			),
		},
	)

	s.AddTool(watchListTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_watch_calendar_list", "calendarList.watch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWatchCalendarList(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	maxResults, err := common.Int(args, "maxResults", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := client.ListCalendarList(ctx, calendar.CalendarListOptions{
		MaxResults:    maxResults,
		MinAccessRole: common.String(args, "minAccessRole"),
		PageToken:     common.String(args, "pageToken"),
		ShowDeleted:   common.Bool(args, "showDeleted"),
		ShowHidden:    common.Bool(args, "showHidden"),
		SyncToken:     common.String(args, "syncToken"),
	})
	if err != nil {
		return common.ErrorResult("list calendars", err), nil
	}

	if common.Bool(args, "raw") {
		return common.JSONResult(list)
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d calendar(s):\n\n", len(list.Items))
	for i, entry := range list.Items {
		cal := calendar.ToCalendarInfo(entry)
		fmt.Fprintf(&result, "%d. %s\n", i+1, cal.Summary)
		fmt.Fprintf(&result, "   ID: %s\n", cal.ID)
		fmt.Fprintf(&result, "   Access Role: %s\n", cal.AccessRole)
		if cal.Primary {
			result.WriteString("   [PRIMARY]\n")
		}
		if cal.Description != "" {
			fmt.Fprintf(&result, "   Description: %s\n", cal.Description)
		}
		if cal.TimeZone != "" {
			fmt.Fprintf(&result, "   Time Zone: %s\n", cal.TimeZone)
		}
		result.WriteString("\n")
	}
	if list.NextPageToken != "" {
		fmt.Fprintf(&result, "More calendars available. Next page token: %s\n", list.NextPageToken)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func handleGetCalendarListEntry(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, err := client.GetCalendarListEntry(ctx, common.StringOr(args, "calendarId", "primary"))
	if err != nil {
		return common.ErrorResult("get calendar list entry", err), nil
	}
	return common.JSONResult(entry)
}

func handleAddCalendarListEntry(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID, err := common.RequiredString(args, "calendarId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, rgb, err := calendarListEntryArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry.Id = calendarID

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := client.InsertCalendarListEntry(ctx, entry, rgb)
	if err != nil {
		return common.ErrorResult("add calendar list entry", err), nil
	}
	return common.JSONResult(created)
}

func handleWriteCalendarListEntry(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, patch bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID, err := common.RequiredString(args, "calendarId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, rgb, err := calendarListEntryArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if patch {
		patched, err := client.PatchCalendarListEntry(ctx, calendarID, entry, rgb)
		if err != nil {
			return common.ErrorResult("patch calendar list entry", err), nil
		}
		return common.JSONResult(patched)
	}

	updated, err := client.UpdateCalendarListEntry(ctx, calendarID, entry, rgb)
	if err != nil {
		return common.ErrorResult("update calendar list entry", err), nil
	}
	return common.JSONResult(updated)
}

func handleRemoveCalendarListEntry(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	if err := client.DeleteCalendarListEntry(ctx, calendarID); err != nil {
		return common.ErrorResult("remove calendar list entry", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Calendar %s removed from the calendar list", calendarID)), nil
}

func handleWatchCalendarList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	opts, err := watchOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.SyncToken = common.String(args, "syncToken")
	opts.ShowDeleted = common.Bool(args, "showDeleted")

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	channel, err := client.WatchCalendarList(ctx, opts)
	if err != nil {
		return common.ErrorResult("watch calendar list", err), nil
	}
	return common.JSONResult(channel)
}
