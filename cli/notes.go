// ABOUTME: Meeting note CLI commands
// ABOUTME: Appends notes to a client and prints a client's note history
package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/models"
)

// NoteCommand appends a meeting note to a client.
func NoteCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("note", flag.ExitOnError)
	client := fs.String("client", "", "Client name (required)")
	broker := fs.String("broker", "", "Broker who met the client")
	text := fs.String("note", "", "Meeting note (required)")
	followUp := fs.String("follow-up", "", "Follow-up items")
	nextSteps := fs.String("next-steps", "", "Agreed next steps")
	_ = fs.Parse(args)

	if *client == "" || *text == "" {
		return fmt.Errorf("--client and --note are required")
	}

	n, err := d.AddNote(*client, models.Note{
		Broker:    *broker,
		Note:      *text,
		FollowUp:  *followUp,
		NextSteps: *nextSteps,
	})
	if err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}

	fmt.Printf("✓ Note added for %s (%s)\n", *client, n.Datetime)
	return nil
}

// NotesCommand prints every note of a client, oldest first.
func NotesCommand(d *desk.Desk, args []string) error {
	fs := flag.NewFlagSet("notes", flag.ExitOnError)
	client := fs.String("client", "", "Client name (required)")
	_ = fs.Parse(args)

	if *client == "" {
		return fmt.Errorf("--client is required")
	}

	c, err := d.ClientByName(*client)
	if err != nil {
		return err
	}

	notes := d.Notes(c.Name)
	if len(notes) == 0 {
		fmt.Printf("No notes for %s\n", c.Name)
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Notes for %s", c.Name)))
	for _, n := range notes {
		fmt.Println()
		heading := n.Datetime
		if n.Broker != "" {
			heading += " · " + n.Broker
		}
		fmt.Println(headerStyle.Render(heading))
		fmt.Println(n.Note)
		if n.FollowUp != "" {
			fmt.Printf("  Follow-up: %s\n", n.FollowUp)
		}
		if n.NextSteps != "" {
			fmt.Printf("  Next steps: %s\n", n.NextSteps)
		}
	}
	return nil
}
