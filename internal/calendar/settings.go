package calendar

import (
	"context"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
)

// GetColors returns the color palettes for calendars and events.
func (c *Client) GetColors(ctx context.Context) (*calendar.Colors, error) {
	colors, err := c.svc.Colors.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get colors: %w", err)
	}
	return colors, nil
}

// ListSettings returns one page of the user's settings.
func (c *Client) ListSettings(ctx context.Context, opts SettingsListOptions) (*calendar.Settings, error) {
	call := c.svc.Settings.List().Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}

	settings, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// GetSetting returns a single user setting such as "timezone".
func (c *Client) GetSetting(ctx context.Context, setting string) (*calendar.Setting, error) {
	if err := requireArg("setting", setting); err != nil {
		return nil, err
	}

	s, err := c.svc.Settings.Get(setting).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return s, nil
}

// WatchSettings opens a push notification channel for changes to the
// user's settings.
func (c *Client) WatchSettings(ctx context.Context, opts WatchOptions) (*calendar.Channel, error) {
	channel, err := opts.channel()
	if err != nil {
		return nil, err
	}

	call := c.svc.Settings.Watch(channel).Context(ctx)
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to watch settings: %w", err)
	}
	return created, nil
}
