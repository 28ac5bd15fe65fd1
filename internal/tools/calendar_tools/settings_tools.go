package calendar_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

// RegisterSettingsTools registers color and user settings tools with the MCP server
func RegisterSettingsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getColorsTool := mcp.NewTool("calendar_get_colors",
		mcp.WithDescription("Get the color palettes available for calendars and events"),
		accountOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getColorsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_colors", "colors.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetColors(ctx, request, sc)
		}))

	listSettingsTool := mcp.NewTool("calendar_list_settings",
		mcp.WithDescription("List the user's calendar settings (time zone, week start, default event length, ...)"),
		accountOption(),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of settings to return"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return"),
		),
		mcp.WithString("syncToken",
			mcp.Description("Token from a previous list call to return only changed settings"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(listSettingsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_list_settings", "settings.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSettings(ctx, request, sc)
		}))

	getSettingTool := mcp.NewTool("calendar_get_setting",
		mcp.WithDescription("Get a single user setting"),
		accountOption(),
		mcp.WithString("setting",
			mcp.Required(),
			mcp.Description("Setting ID (e.g., 'timezone', 'weekStart', 'locale', 'format24HourTime')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getSettingTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_setting", "settings.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSetting(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	watchSettingsTool := newTool("calendar_watch_settings",
		"Open a push notification channel for changes to the user's settings",
		[]mcp.ToolOption{accountOption()},
		watchToolOptions(),
		[]mcp.ToolOption{
			mcp.WithString("syncToken",
				mcp.Description("Only notify about changes after this sync token"),
			),
		},
	)

	s.AddTool(watchSettingsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_watch_settings", "settings.watch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWatchSettings(ctx, request, sc)
		}))

	return nil
}

func handleGetColors(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	colors, err := client.GetColors(ctx)
	if err != nil {
		return common.ErrorResult("get colors", err), nil
	}
	return common.JSONResult(colors)
}

func handleListSettings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	settings, err := client.ListSettings(ctx, calendar.SettingsListOptions{
		MaxResults: maxResults,
		PageToken:  common.String(args, "pageToken"),
		SyncToken:  common.String(args, "syncToken"),
	})
	if err != nil {
		return common.ErrorResult("list settings", err), nil
	}

	if common.Bool(args, "raw") {
		return common.JSONResult(settings)
	}

	items := settings.Items
	sort.Slice(items, func(i, j int) bool { return items[i].Id < items[j].Id })

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d setting(s):\n\n", len(items))
	for _, setting := range items {
		fmt.Fprintf(&result, "%s: %s\n", setting.Id, setting.Value)
	}
	if settings.NextPageToken != "" {
		fmt.Fprintf(&result, "\nMore settings available. Next page token: %s\n", settings.NextPageToken)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func handleGetSetting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	id, err := common.RequiredString(args, "setting")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	setting, err := client.GetSetting(ctx, id)
	if err != nil {
		return common.ErrorResult("get setting", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", setting.Id, setting.Value)), nil
}

func handleWatchSettings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	opts, err := watchOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.SyncToken = common.String(args, "syncToken")

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	channel, err := client.WatchSettings(ctx, opts)
	if err != nil {
		return common.ErrorResult("watch settings", err), nil
	}
	return common.JSONResult(channel)
}
