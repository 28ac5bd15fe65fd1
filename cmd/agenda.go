package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/server"
)

type agendaOptions struct {
	Account    string
	CalendarID string
	Days       int
	TimeZone   string
	MaxResults int64
}

func newAgendaCmd() *cobra.Command {
	var opts agendaOptions

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print upcoming events",
		Long: `Print the events of the coming days, grouped by day.

Uses the same credentials as the MCP server: the GOOGLE_CALENDAR_* environment
variables or the token cached by "gcal-mcp auth".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", opts.Days)
			}
			return runAgenda(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Account, "account", calendar.DefaultAccount, "Account name")
	cmd.Flags().StringVar(&opts.CalendarID, "calendar", "primary", "Calendar ID")
	cmd.Flags().IntVar(&opts.Days, "days", 1, "Number of days to show, starting today")
	cmd.Flags().StringVar(&opts.TimeZone, "tz", "", "Time zone to display times in (default: the calendar's time zone)")
	cmd.Flags().Int64Var(&opts.MaxResults, "max-results", 250, "Maximum number of events to fetch")

	return cmd
}

func runAgenda(ctx context.Context, out io.Writer, opts agendaOptions) error {
	integration, err := google.LoadIntegration()
	if err != nil {
		return err
	}

	sc, err := server.NewServerContext(ctx, server.WithIntegration(integration), server.WithReadOnly(true))
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	return printAgendaForClient(ctx, out, sc, opts, time.Now())
}

func printAgendaForClient(ctx context.Context, out io.Writer, sc *server.ServerContext, opts agendaOptions, now time.Time) error {
	client, err := sc.CalendarClient(opts.Account)
	if err != nil {
		return err
	}

	loc := now.Location()
	if opts.TimeZone != "" {
		loc, err = time.LoadLocation(opts.TimeZone)
		if err != nil {
			return fmt.Errorf("invalid time zone %q: %w", opts.TimeZone, err)
		}
	}

	// Days start at midnight in the requested zone.
	today := now.In(loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, opts.Days)
	singleEvents := true

	events, err := client.ListEventsRaw(ctx, opts.CalendarID, calendar.ListEventsOptions{
		TimeMin:      start.Format(time.RFC3339),
		TimeMax:      end.Format(time.RFC3339),
		SingleEvents: &singleEvents,
		OrderBy:      "startTime",
		TimeZone:     opts.TimeZone,
		MaxResults:   opts.MaxResults,
	})
	if err != nil {
		return err
	}

	if opts.TimeZone == "" && events.TimeZone != "" {
		if calLoc, err := time.LoadLocation(events.TimeZone); err == nil {
			loc = calLoc
		}
	}

	printAgenda(out, events, start, opts.Days, loc)
	return nil
}

// printAgenda writes one section per day. Events are placed on the day they
// start in loc.
func printAgenda(out io.Writer, events *gcal.Events, start time.Time, days int, loc *time.Location) {
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	warnColor := color.New(color.FgRed, color.Bold).SprintFunc()
	subtle := color.New(color.FgHiBlack).SprintFunc()
	summaryColor := color.New(color.FgYellow, color.Bold).SprintFunc()

	byDay := make(map[string][]*gcal.Event)
	for _, item := range events.Items {
		if day := eventDay(item, loc); day != "" {
			byDay[day] = append(byDay[day], item)
		}
	}

	tz := events.TimeZone
	if tz == "" {
		tz = loc.String()
	}
	fmt.Fprintf(out, "Agenda for %s [tz: %s]\n", headerColor(events.Summary), headerColor(tz))

	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		fmt.Fprintf(out, "%s\n", headerColor(day.Format("=== Monday (Jan 2) ===")))

		items := byDay[day.Format("2006-01-02")]
		if len(items) == 0 {
			fmt.Fprintln(out, warnColor("No events."))
			continue
		}

		for _, item := range items {
			line := fmt.Sprintf(" - %s %s", summaryColor(eventTitle(item)), eventTimeLabel(item, loc))
			if item.Location != "" {
				line += " " + subtle("@ "+item.Location)
			}
			if item.HangoutLink != "" {
				line += " " + subtle(item.HangoutLink)
			}
			fmt.Fprintln(out, line)
		}
	}
}

// eventDay returns the YYYY-MM-DD day an event starts on in loc, or "".
func eventDay(item *gcal.Event, loc *time.Location) string {
	if item.Start == nil {
		return ""
	}
	if item.Start.Date != "" {
		return item.Start.Date
	}
	t, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return ""
	}
	return t.In(loc).Format("2006-01-02")
}

func eventTitle(item *gcal.Event) string {
	if item.Summary == "" {
		return "(No title)"
	}
	return item.Summary
}

func eventTimeLabel(item *gcal.Event, loc *time.Location) string {
	highlight := color.New(color.FgGreen).SprintFunc()

	if item.Start == nil || item.Start.Date != "" {
		return highlight("(all day)")
	}

	startTime, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
	var endTime time.Time
	var err2 error
	if item.End != nil {
		endTime, err2 = time.Parse(time.RFC3339, item.End.DateTime)
	}
	if err1 != nil || item.End == nil || err2 != nil {
		return fmt.Sprintf("[%s]", item.Start.DateTime)
	}

	return fmt.Sprintf("[%s --> %s]", highlight(startTime.In(loc).Format("15:04")), highlight(endTime.In(loc).Format("15:04")))
}
