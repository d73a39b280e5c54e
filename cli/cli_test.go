package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/models"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

func setupTestCLI(t *testing.T) *desk.Desk {
	t.Helper()
	c, err := dates.NewClock(dates.DefaultTimezone)
	require.NoError(t, err)

	d := desk.New(nil, desk.Options{
		Clock:    dates.Fixed(c.Location, time.Date(2026, 10, 14, 9, 0, 0, 0, c.Location)),
		Defaults: models.Settings{Brokers: []string{"Amy", "Ben"}, OverdueThreshold: 90},
		Logger:   log.New(io.Discard),
	})
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestParseStartHour(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"13.5", 13.5, false},
		{"9", 9, false},
		{"13:30", 13.5, false},
		{"09:00", 9, false},
		{"13:15", 0, true},
		{"25:00", 0, true},
		{"noon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseStartHour(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBookAndEditAppointment(t *testing.T) {
	d := setupTestCLI(t)
	require.NoError(t, AddClientCommand(d, []string{"--name", "Dana Park", "--broker", "Ben"}))

	require.NoError(t, BookCommand(d, []string{"--client", "Dana Park", "--date", "2026-10-20", "--start", "10:00", "--duration", "2"}))
	appts := d.Appointments()
	require.Len(t, appts, 1)
	assert.Equal(t, "Ben", appts[0].Broker)

	err := BookCommand(d, []string{"--client", "Eve Ruiz", "--broker", "Ben", "--date", "2026-10-20", "--start", "10:30"})
	assert.Error(t, err)

	assert.Error(t, BookCommand(d, []string{"--client", "Eve Ruiz"}))
	assert.Error(t, BookCommand(d, []string{"--client", "Eve Ruiz", "--date", "2026-10-20", "--start", "9"}))

	require.NoError(t, EditAppointmentCommand(d, []string{"--start", "14", "--duration", "1", appts[0].ID}))
	updated, err := d.Appointment(appts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 14.0, updated.StartHour)
	assert.Equal(t, 1.0, updated.Duration)
	assert.Equal(t, "Ben", updated.Broker)

	assert.Error(t, EditAppointmentCommand(d, []string{"--start", "14"}))

	require.NoError(t, ScheduleCommand(d, []string{"--week", "2026-10-19"}))
	require.NoError(t, ScheduleCommand(d, []string{"--day", "2026-10-20"}))

	require.NoError(t, DeleteAppointmentCommand(d, []string{appts[0].ID}))
	assert.Empty(t, d.Appointments())
	assert.ErrorIs(t, DeleteAppointmentCommand(d, []string{appts[0].ID}), desk.ErrNotFound)
}

func TestDeleteClientRequiresYes(t *testing.T) {
	d := setupTestCLI(t)
	require.NoError(t, BookCommand(d, []string{"--client", "Dana Park", "--broker", "Amy", "--date", "2026-10-20", "--start", "9"}))
	require.NoError(t, NoteCommand(d, []string{"--client", "Dana Park", "--note", "Intro"}))
	id := d.Clients()[0].ID

	assert.ErrorIs(t, DeleteClientCommand(d, []string{id}), desk.ErrConfirmationRequired)
	assert.Len(t, d.Clients(), 1)

	require.NoError(t, DeleteClientCommand(d, []string{"--yes", id}))
	assert.Empty(t, d.Clients())
	assert.Empty(t, d.Appointments())
	assert.Empty(t, d.Notes("Dana Park"))
}

func TestAssignAndListCommands(t *testing.T) {
	d := setupTestCLI(t)
	require.NoError(t, AddClientCommand(d, []string{"--name", "Dana Park"}))
	require.NoError(t, AddClientCommand(d, []string{"--name", "Eve Ruiz"}))
	assert.Error(t, AddClientCommand(d, []string{"--name", "eve ruiz"}))

	ids := []string{d.Clients()[0].ID, d.Clients()[1].ID}
	require.NoError(t, AssignCommand(d, append([]string{"--broker", "Amy"}, ids...)))
	for _, c := range d.Clients() {
		assert.Equal(t, []string{"Amy"}, c.ManualBrokers)
	}

	assert.Error(t, AssignCommand(d, ids))
	require.NoError(t, AssignCommand(d, append([]string{"--clear"}, ids[0])))
	c, err := d.Client(ids[0])
	require.NoError(t, err)
	assert.Empty(t, c.ManualBrokers)

	require.NoError(t, ClientsCommand(d, []string{"--broker", "amy"}))
	require.NoError(t, OverdueCommand(d, nil))
	require.NoError(t, NotesCommand(d, []string{"--client", "Dana Park"}))
	assert.Error(t, NotesCommand(d, []string{"--client", "Nobody"}))
}

func TestSettingsCommand(t *testing.T) {
	d := setupTestCLI(t)

	require.NoError(t, SettingsCommand(d, []string{"--brokers", "Cindy, Kobe,Cindy", "--threshold", "45"}))
	st := d.Settings()
	assert.Equal(t, []string{"Cindy", "Kobe"}, st.Brokers)
	assert.Equal(t, 45, st.OverdueThreshold)

	assert.ErrorIs(t, SettingsCommand(d, []string{"--threshold", "-3"}), desk.ErrInvalidThreshold)
	require.NoError(t, SettingsCommand(d, nil))
}

func TestExportImportCommands(t *testing.T) {
	d := setupTestCLI(t)
	require.NoError(t, BookCommand(d, []string{"--client", "Dana Park", "--broker", "Amy", "--date", "2026-10-20", "--start", "9"}))

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, ExportCommand(d, []string{"--output", path}))

	other := setupTestCLI(t)
	require.NoError(t, ImportCommand(other, []string{path}))
	assert.Len(t, other.Appointments(), 1)
	assert.Len(t, other.Clients(), 1)
	assert.Equal(t, []string{"Amy", "Ben"}, other.Settings().Brokers)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.Error(t, ImportCommand(other, []string{bad}))
	assert.Error(t, ImportCommand(other, nil))
}

func TestImportCSVCommand(t *testing.T) {
	d := setupTestCLI(t)
	syncer := crmsync.NewSyncer(d, crmsync.Options{Logger: log.New(io.Discard)})

	path := filepath.Join(t.TempDir(), "clients.csv")
	require.NoError(t, os.WriteFile(path, []byte("Full Name,Phone,Email\nDana Park,555-0101,dana@example.com\n"), 0o600))
	require.NoError(t, ImportCSVCommand(syncer, []string{path}))

	clients := d.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, models.SourceCSV, clients[0].ImportedFrom)

	noName := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(noName, []byte("phone,email\n555,x@y"), 0o600))
	assert.ErrorIs(t, ImportCSVCommand(syncer, []string{noName}), crmsync.ErrUnparseableCSV)
}
