package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

// Resource URIs.
const (
	CalendarsURI = "calendar://calendars"
	SettingsURI  = "calendar://settings"
	ColorsURI    = "calendar://colors"
)

// RegisterCalendarResources registers the account-scoped calendar resources.
func RegisterCalendarResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	calendarsResource := mcp.NewResource(
		CalendarsURI,
		"Calendars",
		mcp.WithResourceDescription("Calendars in the current account's calendar list"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendars(ctx, request, sc)
	})

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Calendar Settings",
		mcp.WithResourceDescription("Calendar settings of the current account, such as time zone and week start"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(ctx, request, sc)
	})

	colorsResource := mcp.NewResource(
		ColorsURI,
		"Calendar Colors",
		mcp.WithResourceDescription("Color palettes for calendars and events"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(colorsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleColors(ctx, request, sc)
	})

	return nil
}

// clientFromContext returns the client of the request's account.
func clientFromContext(ctx context.Context, sc *server.ServerContext) (string, *calendar.Client, error) {
	account := common.GetAccountFromArgs(ctx, nil)
	client, err := sc.CalendarClient(account)
	if err != nil {
		return account, nil, err
	}
	return account, client, nil
}

func handleCalendars(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account, client, err := clientFromContext(ctx, sc)
	if err != nil {
		return nil, err
	}

	calendars, err := client.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	return jsonContents(request, map[string]interface{}{
		"account":   account,
		"calendars": calendars,
	})
}

func handleSettings(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account, client, err := clientFromContext(ctx, sc)
	if err != nil {
		return nil, err
	}

	settingsData := map[string]string{}
	opts := calendar.SettingsListOptions{}
	for {
		settings, err := client.ListSettings(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get calendar settings: %w", err)
		}
		for _, setting := range settings.Items {
			settingsData[setting.Id] = setting.Value
		}
		if settings.NextPageToken == "" {
			break
		}
		opts.PageToken = settings.NextPageToken
	}

	return jsonContents(request, map[string]interface{}{
		"account":  account,
		"settings": settingsData,
	})
}

func handleColors(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	_, client, err := clientFromContext(ctx, sc)
	if err != nil {
		return nil, err
	}

	colors, err := client.GetColors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get colors: %w", err)
	}

	return jsonContents(request, colors)
}

func jsonContents(request mcp.ReadResourceRequest, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
