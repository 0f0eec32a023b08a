package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
	"github.com/idealservice/waste-pickup/internal/infrastructure/idealservice"
)

func NewCheckCommand() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "check PLACE_ID CALENDAR_ID",
		Short: "Check that IdealService knows a calendar and print its upcoming pickups",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := domain.CalendarKey{PlaceID: args[0], CalendarID: args[1]}
			if err := key.Validate(); err != nil {
				return err
			}

			client := idealservice.NewClient(key,
				idealservice.WithBaseURL(baseURL),
				idealservice.WithTimeout(timeout),
			)
			return runCheck(cmd.Context(), cmd, client, key, limit, time.Now())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&baseURL, "base-url", idealservice.DefaultBaseURL, "IdealService API root")
	flags.DurationVar(&timeout, "timeout", idealservice.DefaultTimeout, "request timeout")
	flags.IntVarP(&limit, "limit", "n", 5, "number of upcoming pickups to print")

	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, client ports.CalendarClient, key domain.CalendarKey, limit int, now time.Time) error {
	out := cmd.OutOrStdout()

	events, err := client.FetchEvents(ctx, ports.FetchOptions{})
	if err != nil {
		fmt.Fprintf(out, "%s %s: %s\n", cross(), key, err)
		return fmt.Errorf("%s: %w", domain.CodeInvalidCalendar, err)
	}

	today := domain.DateOf(now)
	var upcoming []domain.PickupEvent
	for _, e := range events {
		if !e.Date.Before(today) {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) == 0 {
		fmt.Fprintf(out, "%s %s: %s\n", cross(), key, domain.ErrNoUpcomingPickup)
		return fmt.Errorf("%s: %w", domain.CodeInvalidCalendar, domain.ErrNoUpcomingPickup)
	}

	fmt.Fprintf(out, "%s %s: %d pickup days, next on %s\n",
		check(), key, len(events), bold("%s", upcoming[0].Date.Format(time.DateOnly)))
	for i, e := range upcoming {
		if i == limit {
			break
		}
		fmt.Fprintf(out, "  %s  %s\n", e.Date.Format("Mon 2006-01-02"), strings.Join(e.TypeTitles(), ", "))
	}
	return nil
}

func check() string {
	return color.New(color.Bold, color.FgGreen).Sprint("✔")
}

func cross() string {
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...any) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
