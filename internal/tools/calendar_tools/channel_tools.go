package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

// watchToolOptions are the channel parameters shared by all watch tools.
func watchToolOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("HTTPS URL that receives the notifications"),
		),
		mcp.WithString("channelId",
			mcp.Description("Unique channel ID (generated when omitted)"),
		),
		mcp.WithString("token",
			mcp.Description("Arbitrary string delivered with every notification"),
		),
		mcp.WithNumber("ttl",
			mcp.Description("Requested channel lifetime in seconds"),
		),
		mcp.WithNumber("expiration",
			mcp.Description("Requested expiration as a Unix timestamp in milliseconds"),
		),
	}
}

func watchOptions(args map[string]interface{}) (calendar.WatchOptions, error) {
	address, err := common.RequiredString(args, "address")
	if err != nil {
		return calendar.WatchOptions{}, err
	}
	ttl, err := common.Int(args, "ttl", 0)
	if err != nil {
		return calendar.WatchOptions{}, err
	}
	if ttl < 0 {
		return calendar.WatchOptions{}, fmt.Errorf("ttl must not be negative")
	}
	expiration, err := common.Int(args, "expiration", 0)
	if err != nil {
		return calendar.WatchOptions{}, err
	}

	return calendar.WatchOptions{
		ID:         common.String(args, "channelId"),
		Address:    address,
		Token:      common.String(args, "token"),
		Type:       calendar.ChannelTypeWebHook,
		TTLSeconds: ttl,
		Expiration: expiration,
	}, nil
}

// RegisterChannelTools registers the tool that stops notification channels.
func RegisterChannelTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	stopChannelTool := mcp.NewTool("calendar_stop_channel",
		mcp.WithDescription("Stop receiving notifications on a channel opened by one of the watch tools"),
		accountOption(),
		mcp.WithString("channelId",
			mcp.Required(),
			mcp.Description("ID of the channel to stop"),
		),
		mcp.WithString("resourceId",
			mcp.Required(),
			mcp.Description("Resource ID returned when the channel was opened"),
		),
	)

	s.AddTool(stopChannelTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_stop_channel", "channels.stop", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleStopChannel(ctx, request, sc)
		}))

	return nil
}

func handleStopChannel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	channelID, err := common.RequiredString(args, "channelId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resourceID, err := common.RequiredString(args, "resourceId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.StopChannel(ctx, channelID, resourceID); err != nil {
		return common.ErrorResult("stop channel", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Channel %s stopped", channelID)), nil
}
