// ABOUTME: Terminal styles for CLI output
// ABOUTME: Status badges and headings rendered with lipgloss
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/brokerdesk/followup"
	"github.com/harperreed/brokerdesk/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// statusBadge colors a followup label.
func statusBadge(label string) string {
	switch label {
	case followup.LabelOverdue:
		return errorStyle.Render("● " + label)
	case followup.LabelScheduled:
		return okStyle.Render("● " + label)
	case followup.LabelNoFuture:
		return busyStyle.Render("● " + label)
	default:
		return mutedStyle.Render("○ " + label)
	}
}

// syncBadge colors a sync status.
func syncBadge(status string) string {
	switch status {
	case models.SyncStatusOK:
		return okStyle.Render("✓ ok")
	case models.SyncStatusSyncing:
		return busyStyle.Render("⟳ syncing")
	case models.SyncStatusError:
		return errorStyle.Render("✗ error")
	default:
		return mutedStyle.Render("○ idle")
	}
}
