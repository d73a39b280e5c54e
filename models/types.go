// ABOUTME: Data models for the broker desk
// ABOUTME: Defines Client, Appointment, Note, Settings, SyncState and the snapshot document
package models

import (
	"strings"
	"time"
)

// Import sources stamped on Client.ImportedFrom.
const (
	SourceManual    = "manual"
	SourceCSV       = "csv"
	SourceRedtail   = "redtail"
	SourcePipedrive = "pipedrive"
)

// StaffLane is the generic bookable lane shown after the configured brokers.
const StaffLane = "Staff"

// DefaultOverdueThreshold is the number of days without an appointment before a client is overdue.
const DefaultOverdueThreshold = 90

type Client struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	ImportedFrom   string   `json:"importedFrom"`
	ContactSource  string   `json:"contactSource"`
	AssignedBroker string   `json:"assignedBroker"`
	ManualBrokers  []string `json:"manualBrokers"`
}

// PreferredBrokers returns the brokers shown for the client. Manual assignments
// win over the broker inferred by the last import.
func (c *Client) PreferredBrokers() []string {
	if len(c.ManualBrokers) > 0 {
		return c.ManualBrokers
	}
	if c.AssignedBroker != "" {
		return []string{c.AssignedBroker}
	}
	return nil
}

// DefaultBroker is the lane a new booking for this client starts in.
func (c *Client) DefaultBroker() string {
	b := c.PreferredBrokers()
	if len(b) == 0 {
		return ""
	}
	return b[0]
}

// NameKey is the case-insensitive identity of a client.
func NameKey(name string) string {
	return strings.ToLower(name)
}

type Appointment struct {
	ID            string  `json:"id"`
	Broker        string  `json:"broker"`
	Date          string  `json:"date"` // YYYY-MM-DD in the business timezone
	StartHour     float64 `json:"startHour"`
	Duration      float64 `json:"duration"`
	ClientName    string  `json:"clientName"`
	Notes         string  `json:"notes"`
	FromPipedrive bool    `json:"fromPipedrive"`
}

// EndHour is the exclusive end of the appointment interval.
func (a *Appointment) EndHour() float64 {
	return a.StartHour + a.Duration
}

// Covers reports whether hour falls inside [StartHour, EndHour).
func (a *Appointment) Covers(hour float64) bool {
	return hour >= a.StartHour && hour < a.EndHour()
}

type Note struct {
	ID        string `json:"id"`
	Datetime  string `json:"datetime"`
	Broker    string `json:"broker"`
	Note      string `json:"note"`
	FollowUp  string `json:"followUp"`
	NextSteps string `json:"nextSteps"`
}

// ClientStatus is derived from the appointment collection and never stored.
// Empty strings mean no such appointment.
type ClientStatus struct {
	Last string `json:"last,omitempty"`
	Next string `json:"next,omitempty"`
}

// Credentials for the external CRMs. Stored in plaintext.
type Credentials struct {
	RedtailUser    string `json:"redtailUser"`
	RedtailKey     string `json:"redtailKey"`
	PipedriveToken string `json:"pipedriveToken"`
}

type Settings struct {
	Brokers          []string    `json:"brokers"`
	OverdueThreshold int         `json:"overdueThreshold"`
	Credentials      Credentials `json:"creds"`
}

// Lanes returns the schedule columns: every broker followed by the staff lane.
func (s *Settings) Lanes() []string {
	lanes := make([]string, 0, len(s.Brokers)+1)
	lanes = append(lanes, s.Brokers...)
	return append(lanes, StaffLane)
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusOK      = "ok"
	SyncStatusError   = "error"
)

type SyncState struct {
	Service      string     `json:"service"`
	Status       string     `json:"status"`
	Message      string     `json:"message,omitempty"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Snapshot is the full-state export document. Nil fields are left untouched on import.
type Snapshot struct {
	Appointments     []Appointment     `json:"appointments"`
	Clients          []Client          `json:"clients"`
	Brokers          []string          `json:"brokers"`
	OverdueThreshold *int              `json:"overdueThreshold"`
	Notes            map[string][]Note `json:"notes"`
}

// Dataset is everything the desk persists. A nil Settings means none were stored yet.
type Dataset struct {
	Clients      []Client
	Appointments []Appointment
	Notes        map[string][]Note
	Settings     *Settings
	SyncStates   []SyncState
}
