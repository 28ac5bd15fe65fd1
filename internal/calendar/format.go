package calendar

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

const (
	displayLayout  = "2006-01-02 03:04 PM"
	timeOnlyLayout = "03:04 PM"
	unknown        = "Unknown"
)

// Accepted ISO-8601 forms, with and without a UTC offset.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

var responseStatusLabels = map[string]string{
	"accepted":    "Accepted",
	"declined":    "Declined",
	"tentative":   "Maybe",
	"needsAction": "Not responded",
}

// FormatDateTime renders an API date or date-time for humans.
//
// Date-times become "2006-01-02 03:04 PM" in their own offset, plain dates
// become "<date> (All day)" and empty values become "Unknown". Values that
// cannot be parsed are returned unchanged.
func FormatDateTime(s string) string {
	if s == "" || s == unknown {
		return unknown
	}
	if !strings.Contains(s, "T") {
		return s + " (All day)"
	}

	t, ok := parseISO(s)
	if !ok {
		slog.Warn("could not parse datetime string", "value", s)
		return s
	}
	return t.Format(displayLayout)
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rawTime returns dateTime, falling back to date, then "Unknown".
func rawTime(dt *calendar.EventDateTime) string {
	if dt == nil {
		return unknown
	}
	if dt.DateTime != "" {
		return dt.DateTime
	}
	if dt.Date != "" {
		return dt.Date
	}
	return unknown
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func dateRangeLabel(days int) string {
	if days == 1 {
		return "today"
	}
	return fmt.Sprintf("the next %d days", days)
}

func formatTodayEvents(events []*calendar.Event, days int) string {
	label := dateRangeLabel(days)
	if len(events) == 0 {
		return fmt.Sprintf("No events scheduled for %s.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Events for %s:\n\n", label)
	for _, event := range events {
		fmt.Fprintf(&b, "- %s: %s (ID: %s)\n",
			todayTimeDisplay(event.Start, days),
			orDefault(event.Summary, "Untitled event"),
			orDefault(event.Id, "No ID"),
		)
	}
	return b.String()
}

func todayTimeDisplay(start *calendar.EventDateTime, days int) string {
	if start != nil && strings.Contains(start.DateTime, "T") {
		if days > 1 {
			return FormatDateTime(start.DateTime)
		}
		if t, ok := parseISO(start.DateTime); ok {
			return t.Format(timeOnlyLayout)
		}
		return start.DateTime
	}

	if days > 1 {
		date := ""
		if start != nil {
			date = start.Date
		}
		return date + " (All day)"
	}
	return "All day"
}

func formatEvent(eventID string, event *calendar.Event) string {
	creator, organizer := unknown, unknown
	if event.Creator != nil && event.Creator.Email != "" {
		creator = event.Creator.Email
	}
	if event.Organizer != nil && event.Organizer.Email != "" {
		organizer = event.Organizer.Email
	}

	recurring := "No"
	if len(event.Recurrence) > 0 {
		recurring = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", orDefault(event.Summary, "Untitled event"))
	fmt.Fprintf(&b, "ID: %s\n", eventID)
	fmt.Fprintf(&b, "When: %s to %s\n", FormatDateTime(rawTime(event.Start)), FormatDateTime(rawTime(event.End)))
	fmt.Fprintf(&b, "Where: %s\n", orDefault(event.Location, "No location specified"))
	fmt.Fprintf(&b, "Description: %s\n", orDefault(event.Description, "No description"))
	fmt.Fprintf(&b, "Creator: %s\n", creator)
	fmt.Fprintf(&b, "Organizer: %s\n", organizer)
	fmt.Fprintf(&b, "Recurring: %s\n", recurring)

	if len(event.Attendees) > 0 {
		b.WriteString("\nAttendees:\n")
		for i, attendee := range event.Attendees {
			email := orDefault(attendee.Email, "No email")
			name := orDefault(attendee.DisplayName, email)
			fmt.Fprintf(&b, "  %d. %s (%s) - %s\n", i+1, name, email, responseStatusLabel(attendee.ResponseStatus))
		}
	}
	return b.String()
}

func responseStatusLabel(status string) string {
	if status == "" {
		return unknown
	}
	if label, ok := responseStatusLabels[status]; ok {
		return label
	}
	return status
}

func formatEventList(events *calendar.Events) string {
	if len(events.Items) == 0 {
		return "No events found matching your criteria."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Events from %s (Time Zone: %s):\n\n",
		orDefault(events.Summary, "Your Calendar"),
		orDefault(events.TimeZone, unknown),
	)
	for i, event := range events.Items {
		recurring := ""
		if len(event.Recurrence) > 0 {
			recurring = " (Recurring)"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, orDefault(event.Summary, "Untitled event"), recurring)
		fmt.Fprintf(&b, "   ID: %s\n", orDefault(event.Id, "No ID"))
		fmt.Fprintf(&b, "   When: %s\n", FormatDateTime(rawTime(event.Start)))
		fmt.Fprintf(&b, "   Where: %s\n", orDefault(event.Location, "No location specified"))
		if i < len(events.Items)-1 {
			b.WriteString("\n")
		}
	}
	if events.NextPageToken != "" {
		fmt.Fprintf(&b, "\nMore events available. Use page_token='%s' to see more.", events.NextPageToken)
	}
	return b.String()
}

func formatQuickAdd(event *calendar.Event) string {
	start := FormatDateTime(rawTime(event.Start))
	end := FormatDateTime(rawTime(event.End))
	id := orDefault(event.Id, unknown)

	var b strings.Builder
	b.WriteString("Successfully created event!\n\n")
	fmt.Fprintf(&b, "Summary: %s\n", orDefault(event.Summary, "Untitled event"))
	fmt.Fprintf(&b, "When: %s", start)
	if start != end {
		fmt.Fprintf(&b, " to %s", end)
	}
	fmt.Fprintf(&b, "\nWhere: %s\n", orDefault(event.Location, "No location specified"))
	fmt.Fprintf(&b, "Event ID: %s\n", id)
	fmt.Fprintf(&b, "\nUse get_event('%s') to see full details.", id)
	return b.String()
}

func formatInstances(eventID string, instances *calendar.Events) string {
	if len(instances.Items) == 0 {
		return fmt.Sprintf("No instances found for recurring event with ID: %s", eventID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Instances of recurring event: %s\n\n",
		orDefault(instances.Items[0].Summary, "Untitled recurring event"))

	for i, instance := range instances.Items {
		status := ""
		switch instance.Status {
		case "cancelled":
			status = " [CANCELLED]"
		case "tentative":
			status = " [TENTATIVE]"
		}

		modified := instance.OriginalStartTime != nil && instance.OriginalStartTime.DateTime != ""
		marker := ""
		if modified {
			marker = " [MODIFIED]"
		}

		fmt.Fprintf(&b, "%d. %s%s%s\n", i+1, FormatDateTime(rawTime(instance.Start)), status, marker)
		fmt.Fprintf(&b, "   Instance ID: %s\n", orDefault(instance.Id, "No ID"))
		if modified {
			fmt.Fprintf(&b, "   Original time: %s\n", FormatDateTime(rawTime(instance.OriginalStartTime)))
		}
		if i < len(instances.Items)-1 {
			b.WriteString("\n")
		}
	}
	if instances.NextPageToken != "" {
		fmt.Fprintf(&b, "\nMore instances available. Use page_token='%s' to see more.", instances.NextPageToken)
	}
	return b.String()
}
