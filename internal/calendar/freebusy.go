package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

const slotStep = 15 * time.Minute

// QueryFreeBusy returns the busy periods of a set of calendars.
func (c *Client) QueryFreeBusy(ctx context.Context, opts FreeBusyOptions) (*calendar.FreeBusyResponse, error) {
	if err := requireArg("timeMin", opts.TimeMin); err != nil {
		return nil, err
	}
	if err := requireArg("timeMax", opts.TimeMax); err != nil {
		return nil, err
	}
	if len(opts.Items) == 0 {
		return nil, invalidArg("at least one calendar ID is required")
	}

	items := make([]*calendar.FreeBusyRequestItem, len(opts.Items))
	for i, id := range opts.Items {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	req := &calendar.FreeBusyRequest{
		TimeMin:              opts.TimeMin,
		TimeMax:              opts.TimeMax,
		TimeZone:             opts.TimeZone,
		GroupExpansionMax:    opts.GroupExpansionMax,
		CalendarExpansionMax: opts.CalendarExpansionMax,
		Items:                items,
	}

	result, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}
	return result, nil
}

// SummarizeFreeBusy flattens a free/busy response, ordered by calendar ID.
// Busy periods that cannot be parsed are skipped.
func SummarizeFreeBusy(resp *calendar.FreeBusyResponse) []FreeBusyInfo {
	if resp == nil {
		return nil
	}

	ids := make([]string, 0, len(resp.Calendars))
	for id := range resp.Calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	infos := make([]FreeBusyInfo, 0, len(ids))
	for _, id := range ids {
		cal := resp.Calendars[id]
		info := FreeBusyInfo{Calendar: id}

		for _, busy := range cal.Busy {
			start, err1 := time.Parse(time.RFC3339, busy.Start)
			end, err2 := time.Parse(time.RFC3339, busy.End)
			if err1 != nil || err2 != nil {
				continue
			}
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}

		for _, e := range cal.Errors {
			info.Errors = append(info.Errors, e.Reason)
		}

		infos = append(infos, info)
	}
	return infos
}

// FindAvailableSlots finds time slots of the given duration in which all
// attendees are free. Candidate slots start every 15 minutes within each
// free gap. At most maxResults slots are returned when maxResults > 0.
func (c *Client) FindAvailableSlots(ctx context.Context, attendees []string, duration time.Duration, timeMin, timeMax time.Time, maxResults int) ([]AvailableSlot, error) {
	if duration <= 0 {
		return nil, invalidArg("duration must be positive")
	}
	if !timeMax.After(timeMin) {
		return nil, invalidArg("timeMax must be after timeMin")
	}

	resp, err := c.QueryFreeBusy(ctx, FreeBusyOptions{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   attendees,
	})
	if err != nil {
		return nil, err
	}

	var busy []TimeRange
	for _, info := range SummarizeFreeBusy(resp) {
		busy = append(busy, info.Busy...)
	}

	return freeSlots(mergeRanges(busy), duration, timeMin, timeMax, maxResults), nil
}

// mergeRanges sorts ranges by start and joins overlapping or touching ones.
func mergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func freeSlots(busy []TimeRange, duration time.Duration, timeMin, timeMax time.Time, maxResults int) []AvailableSlot {
	var slots []AvailableSlot

	emit := func(gapStart, gapEnd time.Time) bool {
		for start := gapStart; !start.Add(duration).After(gapEnd); start = start.Add(slotStep) {
			slots = append(slots, AvailableSlot{
				Start:    start,
				End:      start.Add(duration),
				Duration: duration,
			})
			if maxResults > 0 && len(slots) >= maxResults {
				return false
			}
		}
		return true
	}

	cursor := timeMin
	for _, b := range busy {
		if !b.End.After(cursor) {
			continue
		}
		if b.Start.After(cursor) {
			gapEnd := b.Start
			if gapEnd.After(timeMax) {
				gapEnd = timeMax
			}
			if !emit(cursor, gapEnd) {
				return slots
			}
		}
		cursor = b.End
		if !cursor.Before(timeMax) {
			return slots
		}
	}
	emit(cursor, timeMax)
	return slots
}
