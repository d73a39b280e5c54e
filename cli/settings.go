// ABOUTME: Settings and credentials CLI commands
// ABOUTME: Shows or changes brokers and the overdue threshold, and prompts for CRM credentials
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/harperreed/brokerdesk/desk"
)

// SettingsCommand prints the settings, or changes the ones given as flags.
func SettingsCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	brokers := fs.String("brokers", "", "Comma-separated broker list (replaces the current list)")
	threshold := fs.Int("threshold", 0, "Days without an appointment before a client is overdue")
	_ = fs.Parse(args)

	if *brokers != "" {
		list := d.SetBrokers(splitList(*brokers))
		fmt.Printf("✓ Brokers: %s\n", strings.Join(list, ", "))
	}
	if *threshold != 0 {
		if err := d.SetOverdueThreshold(*threshold); err != nil {
			return err
		}
		fmt.Printf("✓ Overdue threshold: %d days\n", *threshold)
	}
	if *brokers != "" || *threshold != 0 {
		return nil
	}

	st := d.Settings()
	fmt.Println(titleStyle.Render("Settings"))
	fmt.Printf("  Brokers:           %s\n", strings.Join(st.Brokers, ", "))
	fmt.Printf("  Lanes:             %s\n", strings.Join(st.Lanes(), ", "))
	fmt.Printf("  Overdue threshold: %d days\n", st.OverdueThreshold)
	fmt.Printf("  Redtail user:      %s\n", valueOrDash(st.Credentials.RedtailUser))
	fmt.Printf("  Redtail key:       %s\n", setOrNot(st.Credentials.RedtailKey))
	fmt.Printf("  Pipedrive token:   %s\n", setOrNot(st.Credentials.PipedriveToken))

	fmt.Println()
	fmt.Println(headerStyle.Render("Sync"))
	statuses := d.SyncStatuses()
	if len(statuses) == 0 {
		fmt.Println(mutedStyle.Render("  Not synced yet"))
	}
	for _, s := range statuses {
		line := fmt.Sprintf("  %-10s %s", s.Service, syncBadge(s.Status))
		if s.Message != "" {
			line += " " + mutedStyle.Render(s.Message)
		}
		if s.LastSyncTime != nil {
			line += mutedStyle.Render(" • Last synced " + s.LastSyncTime.In(d.Clock().Location).Format("Jan 2 3:04 PM"))
		}
		fmt.Println(line)
	}
	return nil
}

// CredentialsCommand prompts for CRM credentials and stores them. Keys are
// read without echo when stdin is a terminal. Empty answers keep the stored value.
func CredentialsCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("credentials", flag.ExitOnError)
	_ = fs.Parse(args)

	creds := d.Settings().Credentials
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Redtail username [%s]: ", valueOrDash(creds.RedtailUser))
	user, err := reader.ReadString('\n')
	if err != nil && user == "" {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if v := strings.TrimSpace(user); v != "" {
		creds.RedtailUser = v
	}

	key, err := readSecret(reader, fmt.Sprintf("Redtail API key [%s]: ", setOrNot(creds.RedtailKey)))
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	if key != "" {
		creds.RedtailKey = key
	}

	token, err := readSecret(reader, fmt.Sprintf("Pipedrive API token [%s]: ", setOrNot(creds.PipedriveToken)))
	if err != nil {
		return fmt.Errorf("failed to read API token: %w", err)
	}
	if token != "" {
		creds.PipedriveToken = token
	}

	d.SetCredentials(creds)
	fmt.Println("✓ Credentials saved")
	return nil
}

func readSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println() // New line after hidden input
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func setOrNot(s string) string {
	if s == "" {
		return "not set"
	}
	return "set"
}
