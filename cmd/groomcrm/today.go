// Today command lists the day's events with dog resolution.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groomcrm/groomcrm/internal/calendar"
	"github.com/groomcrm/groomcrm/pkg/types"
)

var (
	todayCalendarID string
	todaySave       bool
	todayDate       string
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's grooming appointments",
	Long: `Today lists the day's calendar events and resolves each one to a dog,
using the stored link first and the description token as a fallback.

Requires an access token in GROOMCRM_OAUTH_TOKEN.

Example:
  groomcrm today
  groomcrm today --calendar <calId> --save
  groomcrm today --date 2026-09-01`,
	Args: cobra.NoArgs,
	RunE: runToday,
}

func init() {
	todayCmd.Flags().StringVar(&todayCalendarID, "calendar", "", "calendar id (default: selected)")
	todayCmd.Flags().BoolVar(&todaySave, "save", false, "persist --calendar as the selected calendar")
	todayCmd.Flags().StringVar(&todayDate, "date", "", "day to list (YYYY-MM-DD, default: today)")
}

func runToday(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	calendarID, err := selectedCalendarID(backend, todayCalendarID)
	if err != nil {
		return err
	}
	if todaySave && todayCalendarID != "" {
		if err := backend.SetKV(types.KVSelectedCalendarID, todayCalendarID); err != nil {
			return err
		}
	}

	day := time.Now()
	if todayDate != "" {
		day, err = time.ParseInLocation("2006-01-02", todayDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", todayDate, err)
		}
	}

	client, err := newCalendarClient(backend)
	if err != nil {
		return err
	}
	resolver := newResolver(backend, client)

	resolutions, err := resolver.EventsForDay(calendarID, day)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(resolutions)
	}
	if len(resolutions) == 0 {
		fmt.Println("No events")
		return nil
	}
	for _, res := range resolutions {
		fmt.Printf("%s  %s  %s\n", res.Event.ID, eventStart(res), describeDog(res))
	}
	return nil
}

func eventStart(res *calendar.Resolution) string {
	if res.Event.Start.DateTime != "" {
		return res.Event.Start.DateTime
	}
	return res.Event.Start.Date + " (all day)"
}

func describeDog(res *calendar.Resolution) string {
	switch {
	case res.Dangling():
		return fmt.Sprintf("unknown dog linked (%s)", res.DogID)
	case res.Linked():
		return res.Dog.DogName
	default:
		return "-"
	}
}
