// ABOUTME: Client directory CLI commands
// ABOUTME: Lists, adds, assigns and deletes clients and shows the overdue list
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/followup"
	"github.com/harperreed/brokerdesk/models"
)

// ClientsCommand lists clients with their scheduling status.
func ClientsCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("clients", flag.ExitOnError)
	query := fs.String("query", "", "Search by name, email or phone")
	broker := fs.String("broker", "", "Only clients preferring this broker")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	match := make(map[string]bool)
	for _, c := range d.FindClients(*query) {
		match[c.ID] = true
	}

	var entries []followup.Entry
	for _, e := range d.ClientStatuses() {
		if !match[e.Client.ID] {
			continue
		}
		if *broker != "" && !containsFold(e.Client.PreferredBrokers(), *broker) {
			continue
		}
		entries = append(entries, e)
		if len(entries) == *limit {
			break
		}
	}

	if len(entries) == 0 {
		fmt.Println("No clients found")
		return nil
	}

	printEntries(d, entries)
	return nil
}

// OverdueCommand lists clients due for a follow-up.
func OverdueCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("overdue", flag.ExitOnError)
	broker := fs.String("broker", "", "Only clients preferring this broker")
	_ = fs.Parse(args)

	var entries []followup.Entry
	for _, e := range d.Overdue() {
		if *broker != "" && !containsFold(e.Client.PreferredBrokers(), *broker) {
			continue
		}
		entries = append(entries, e)
	}

	threshold := d.Settings().OverdueThreshold
	if len(entries) == 0 {
		fmt.Printf("No clients overdue (threshold: %d days)\n", threshold)
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d clients overdue (threshold: %d days)", len(entries), threshold)))
	printEntries(d, entries)
	return nil
}

func printEntries(d *desk.Desk, entries []followup.Entry) {
	clock := d.Clock()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tBROKERS\tLAST\tNEXT\tDAYS\tSOURCE\tID\tSTATUS")
	_, _ = fmt.Fprintln(w, "----\t-------\t----\t----\t----\t------\t--\t------")

	for _, e := range entries {
		brokers := strings.Join(e.Client.PreferredBrokers(), ", ")
		if brokers == "" {
			brokers = "-"
		}
		last, next, days := "-", "-", "never"
		if e.Status.Last != "" {
			last = clock.Fmt(e.Status.Last)
		}
		if e.Status.Next != "" {
			next = clock.Fmt(e.Status.Next)
		}
		if e.DaysSince != dates.Infinite {
			days = fmt.Sprintf("%d", e.DaysSince)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Client.Name, brokers, last, next, days, e.Client.ImportedFrom, e.Client.ID, statusBadge(e.Label))
	}

	_ = w.Flush()
}

// AddClientCommand adds a client by hand.
func AddClientCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("add-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name (required)")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	broker := fs.String("broker", "", "Comma-separated brokers to assign")
	source := fs.String("source", "", "How the client found us")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	c, err := d.AddClient(models.Client{
		Name:          *name,
		Phone:         *phone,
		Email:         *email,
		ContactSource: *source,
		ManualBrokers: splitList(*broker),
	})
	if err != nil {
		return fmt.Errorf("failed to add client: %w", err)
	}

	fmt.Printf("✓ Client created: %s (ID: %s)\n", c.Name, c.ID)
	if c.Email != "" {
		fmt.Printf("  Email: %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Printf("  Phone: %s\n", c.Phone)
	}
	if len(c.ManualBrokers) > 0 {
		fmt.Printf("  Brokers: %s\n", strings.Join(c.ManualBrokers, ", "))
	}
	return nil
}

// DeleteClientCommand removes clients with their appointments and notes.
func DeleteClientCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("delete-client", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm the cascading delete")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: delete-client --yes <id> [id...]")
	}
	if !*yes {
		return fmt.Errorf("deleting removes appointments and notes too; rerun with --yes: %w", desk.ErrConfirmationRequired)
	}

	var (
		res desk.DeleteResult
		err error
	)
	if fs.NArg() == 1 {
		res, err = d.DeleteClient(fs.Arg(0), true)
	} else {
		res, err = d.BulkDelete(fs.Args(), true)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Deleted %d clients, %d appointments, %d notes\n", res.Clients, res.Appointments, res.Notes)
	return nil
}

// AssignCommand adds a broker to clients, or clears their assignments.
func AssignCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	broker := fs.String("broker", "", "Broker to add to each client")
	clearAll := fs.Bool("clear", false, "Remove all manual assignments instead")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: assign (--broker <name> | --clear) <id> [id...]")
	}

	if *clearAll {
		n := d.BulkClearAssignments(fs.Args())
		fmt.Printf("✓ Cleared assignments on %d clients\n", n)
		return nil
	}

	n, err := d.BulkAssign(fs.Args(), *broker)
	if err != nil {
		return fmt.Errorf("--broker is required: %w", err)
	}
	fmt.Printf("✓ Assigned %s to %d clients\n", *broker, n)
	return nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
