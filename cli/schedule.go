// ABOUTME: Schedule CLI commands
// ABOUTME: Renders the week grid and books, edits or removes appointments
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/models"
	"github.com/harperreed/brokerdesk/schedule"
)

// ScheduleCommand prints the week grid, one table per day.
func ScheduleCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	week := fs.String("week", "", "Monday of the week (YYYY-MM-DD, default: this week)")
	day := fs.String("day", "", "Only show this date (YYYY-MM-DD)")
	all := fs.Bool("all", false, "Show days without appointments")
	_ = fs.Parse(args)

	monday := *week
	if monday == "" && *day != "" {
		key, err := d.Clock().NormalizeKey(*day)
		if err != nil {
			return err
		}
		*day = key
		t, err := d.Clock().ParseKey(key)
		if err != nil {
			return err
		}
		monday = d.Clock().MondayOf(t)
	}

	w, err := d.Week(monday)
	if err != nil {
		return fmt.Errorf("failed to build week: %w", err)
	}

	fmt.Println(titleStyle.Render("Week of " + d.Clock().FmtFull(w.Monday)))
	fmt.Println()

	shown := 0
	for i, dayInfo := range w.Days {
		if *day != "" && dayInfo.Date != *day {
			continue
		}
		if !*all && *day == "" && !dayHasAppointments(w, i) {
			continue
		}
		printDay(w, i)
		shown++
	}

	if shown == 0 {
		fmt.Println(mutedStyle.Render("No appointments this week"))
	}
	return nil
}

func dayHasAppointments(w *schedule.Week, day int) bool {
	for _, row := range w.Rows {
		for _, cell := range row.Cells[day] {
			if cell.Kind == schedule.CellStart {
				return true
			}
		}
	}
	return false
}

func printDay(w *schedule.Week, day int) {
	info := w.Days[day]
	heading := fmt.Sprintf("%s %s", info.Name, info.Date)
	if info.IsToday {
		heading += " (today)"
	}
	fmt.Println(headerStyle.Render(heading))

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "TIME\t%s\n", strings.Join(w.Lanes, "\t"))
	for _, row := range w.Rows {
		cells := make([]string, len(row.Cells[day]))
		for j, cell := range row.Cells[day] {
			cells[j] = cellText(cell)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", row.Label, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	fmt.Println()
}

func cellText(c schedule.Cell) string {
	switch c.Kind {
	case schedule.CellStart:
		text := c.Appointment.ClientName
		if c.Appointment.FromPipedrive {
			text += " [pd]"
		}
		return text
	case schedule.CellBlocked:
		return "│"
	default:
		if c.Bookable {
			return "·"
		}
		return ""
	}
}

// BookCommand books an appointment.
func BookCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	client := fs.String("client", "", "Client name (required)")
	broker := fs.String("broker", "", "Broker or Staff lane (default: the client's preferred broker)")
	date := fs.String("date", "", "Date YYYY-MM-DD (required)")
	start := fs.String("start", "", "Start time, e.g. 13:30 or 13.5 (required)")
	duration := fs.Float64("duration", 1, "Duration in hours (multiple of 0.5)")
	notes := fs.String("notes", "", "Appointment notes")
	_ = fs.Parse(args)

	if *client == "" || *date == "" || *start == "" {
		return fmt.Errorf("--client, --date and --start are required")
	}

	hour, err := parseStartHour(*start)
	if err != nil {
		return err
	}

	lane := *broker
	if lane == "" {
		if c, err := d.ClientByName(*client); err == nil {
			lane = c.DefaultBroker()
		}
	}
	if lane == "" {
		return fmt.Errorf("--broker is required for a client without a preferred broker")
	}

	a, err := d.Book(models.Appointment{
		Broker:     lane,
		Date:       *date,
		StartHour:  hour,
		Duration:   *duration,
		ClientName: *client,
		Notes:      *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to book appointment: %w", err)
	}

	fmt.Printf("✓ Booked %s with %s on %s at %s (ID: %s)\n",
		a.ClientName, a.Broker, d.Clock().FmtFull(a.Date), dates.HourLabel(a.StartHour), a.ID)
	return nil
}

// EditAppointmentCommand changes the fields given as flags.
// Note: flags must come before the appointment ID
func EditAppointmentCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("edit-appt", flag.ExitOnError)
	client := fs.String("client", "", "Client name")
	broker := fs.String("broker", "", "Broker or Staff lane")
	date := fs.String("date", "", "Date YYYY-MM-DD")
	start := fs.String("start", "", "Start time, e.g. 13:30 or 13.5")
	duration := fs.Float64("duration", 0, "Duration in hours")
	notes := fs.String("notes", "", "Appointment notes")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: edit-appt [flags] <id>")
	}

	a, err := d.Appointment(fs.Arg(0))
	if err != nil {
		return err
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "client":
			a.ClientName = *client
		case "broker":
			a.Broker = *broker
		case "date":
			a.Date = *date
		case "start":
			a.StartHour, parseErr = parseStartHour(*start)
		case "duration":
			a.Duration = *duration
		case "notes":
			a.Notes = *notes
		}
	})
	if parseErr != nil {
		return parseErr
	}

	updated, err := d.UpdateAppointment(a)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	fmt.Printf("✓ Updated appointment %s: %s with %s on %s at %s\n",
		updated.ID, updated.ClientName, updated.Broker, updated.Date, dates.HourLabel(updated.StartHour))
	return nil
}

// DeleteAppointmentCommand removes one appointment.
func DeleteAppointmentCommand(d *desk.Desk, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-appt <id>")
	}
	if err := d.DeleteAppointment(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted appointment %s\n", args[0])
	return nil
}

// parseStartHour accepts fractional hours ("13.5") or 24-hour clock times ("13:30").
func parseStartHour(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if hh, mm, ok := strings.Cut(s, ":"); ok {
		h, err1 := strconv.Atoi(hh)
		m, err2 := strconv.Atoi(mm)
		if err1 != nil || err2 != nil || h < 0 || h > 23 || (m != 0 && m != 30) {
			return 0, fmt.Errorf("invalid start time %q: use HH:00 or HH:30", s)
		}
		return float64(h) + float64(m)/60, nil
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q", s)
	}
	return h, nil
}
