package calendar

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"
)

// ChannelTypeWebHook is the only delivery mechanism the Calendar API offers.
const ChannelTypeWebHook = "web_hook"

func (o WatchOptions) channel() (*calendar.Channel, error) {
	if err := requireArg("address", o.Address); err != nil {
		return nil, err
	}
	if o.TTLSeconds < 0 {
		return nil, invalidArg("ttl must not be negative")
	}

	ch := &calendar.Channel{
		Id:         o.ID,
		Address:    o.Address,
		Token:      o.Token,
		Type:       o.Type,
		Expiration: o.Expiration,
	}
	if ch.Id == "" {
		ch.Id = uuid.NewString()
	}
	if ch.Type == "" {
		ch.Type = ChannelTypeWebHook
	}
	if o.TTLSeconds > 0 {
		ch.Params = map[string]string{"ttl": strconv.FormatInt(o.TTLSeconds, 10)}
	}
	return ch, nil
}

// StopChannel stops notifications on a channel opened by one of the watch
// calls. Both values come from the channel returned by that call.
func (c *Client) StopChannel(ctx context.Context, channelID, resourceID string) error {
	if err := requireArg("channelID", channelID); err != nil {
		return err
	}
	if err := requireArg("resourceID", resourceID); err != nil {
		return err
	}

	err := c.svc.Channels.Stop(&calendar.Channel{
		Id:         channelID,
		ResourceId: resourceID,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to stop channel: %w", err)
	}
	return nil
}
