// ABOUTME: Snapshot export and import CLI commands
// ABOUTME: Writes the whole dataset as JSON and restores the keys present in a document
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/models"
)

// ExportCommand writes the snapshot document to a file or stdout.
func ExportCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	data, err := json.MarshalIndent(d.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	data = append(data, '\n')

	if *output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(*output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	fmt.Printf("✓ Snapshot written to %s\n", *output)
	return nil
}

// ImportCommand replaces every collection present in a snapshot file.
func ImportCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: import <file|->")
	}

	data, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if err := d.Import(snap); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	fmt.Printf("✓ Imported snapshot: %d clients, %d appointments\n", len(d.Clients()), len(d.Appointments()))
	return nil
}
