package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"whatsapp-disparador/internal/birthday"
	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/repository"
)

var (
	calendarUser  string
	calendarMonth string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print a month of birthdays as a text grid",
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarUser, "user", "", "owner of the contacts")
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "month to show as YYYY-MM (default: current month)")
	calendarCmd.MarkFlagRequired("user")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}

	clock := birthday.RealClock{}
	now := clock.Now()
	ref := birthday.FirstOfMonth(now)
	if calendarMonth != "" {
		ref, err = birthday.ParseMonth(calendarMonth, now.Location())
		if err != nil {
			return fmt.Errorf("invalid --month %q: %w", calendarMonth, err)
		}
	}

	db, err := repository.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	contacts, err := repository.NewContactRepository(db).ListWithBirthday(cmd.Context(), calendarUser)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	translator, err := i18n.New(cfg.Locale.Languages, appLogger)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	view := birthday.BuildMonth(contacts, ref, now)
	view.Label = translator.Localizer("").MonthLabel(view.Year, time.Month(view.Month))
	printMonth(cmd.OutOrStdout(), view)
	return nil
}

// printMonth writes a Sunday-first grid. Days with birthdays carry a '*'
// and today is bracketed; the roster follows the grid.
func printMonth(w io.Writer, view model.CalendarMonth) {
	fmt.Fprintln(w, view.Label)
	for d := time.Sunday; d <= time.Saturday; d++ {
		fmt.Fprintf(w, " %-4s", d.String()[:2])
	}
	fmt.Fprintln(w)

	col := 0
	fmt.Fprint(w, strings.Repeat("     ", view.LeadingBlanks))
	col += view.LeadingBlanks
	for _, day := range view.Days {
		cell := fmt.Sprintf("%2d", day.Day)
		if day.IsToday {
			cell = "[" + cell + "]"
		} else {
			cell = " " + cell + " "
		}
		mark := " "
		if len(day.Birthdays) > 0 {
			mark = "*"
		}
		fmt.Fprint(w, cell+mark)

		col++
		if col%7 == 0 {
			fmt.Fprintln(w)
		}
	}
	if col%7 != 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nBirthdays this month: %d\n", view.Total)
	for _, entry := range view.Roster {
		fmt.Fprintf(w, "  %s  %s  %s\n", entry.DayMonth, entry.DisplayName, entry.Contact.PhoneNumber)
	}
}
