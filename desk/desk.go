// ABOUTME: In-memory application state for the broker desk
// ABOUTME: Serializes mutations behind a mutex and persists them in the background
package desk

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
	"github.com/harperreed/brokerdesk/schedule"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateClient      = errors.New("a client with that name already exists")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrEmptyName            = errors.New("name is required")
	ErrEmptyNote            = errors.New("note text is required")
	ErrInvalidThreshold     = errors.New("overdue threshold must be at least 1 day")
	ErrClosed               = errors.New("desk is closed")
)

// Store persists desk state. db.Store implements it.
type Store interface {
	LoadAll() (*models.Dataset, error)
	UpsertClients(clients []models.Client) error
	DeleteClient(id, name string) error
	UpsertAppointment(a models.Appointment) error
	DeleteAppointment(id string) error
	ReplaceSynced(appts []models.Appointment) error
	InsertNote(clientName string, n models.Note) error
	SaveSettings(s models.Settings) error
	SaveSyncState(st models.SyncState) error
	ReplaceAll(ds *models.Dataset) error
}

// Options configures a Desk.
type Options struct {
	Clock    *dates.Clock
	Hours    schedule.Hours
	Defaults models.Settings
	Logger   *log.Logger
}

type persistJob struct {
	op   string
	fn   func(Store) error
	done chan struct{}
}

// Desk owns the clients, appointments, notes, settings and sync statuses of
// one session. Every exported method is safe for concurrent use.
type Desk struct {
	mu sync.Mutex

	store  Store
	clock  *dates.Clock
	hours  schedule.Hours
	logger *log.Logger

	clients  []models.Client
	appts    []models.Appointment
	notes    map[string][]models.Note
	settings models.Settings
	statuses map[string]models.SyncState

	jobs    chan persistJob
	stopped chan struct{}
	closed  bool
}

// New creates a desk seeded with the default settings. Call Load to read the
// stored dataset. A nil store keeps everything in memory.
func New(store Store, opts Options) *Desk {
	if opts.Clock == nil {
		opts.Clock, _ = dates.NewClock(dates.DefaultTimezone)
	}
	if opts.Hours == (schedule.Hours{}) {
		opts.Hours = schedule.DefaultHours()
	}
	if opts.Defaults.OverdueThreshold <= 0 {
		opts.Defaults.OverdueThreshold = models.DefaultOverdueThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	d := &Desk{
		store:    store,
		clock:    opts.Clock,
		hours:    opts.Hours,
		logger:   logger.WithPrefix("desk"),
		notes:    make(map[string][]models.Note),
		settings: cloneSettings(opts.Defaults),
		statuses: make(map[string]models.SyncState),
	}

	if store != nil {
		d.jobs = make(chan persistJob, 256)
		d.stopped = make(chan struct{})
		go d.runPersistence()
	}

	return d
}

// Load replaces the in-memory state with the stored dataset. Settings that
// were never stored keep their defaults.
func (d *Desk) Load() error {
	if d.store == nil {
		return nil
	}

	ds, err := d.store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.clients = ds.Clients
	d.appts = ds.Appointments
	d.notes = ds.Notes
	if d.notes == nil {
		d.notes = make(map[string][]models.Note)
	}
	if ds.Settings != nil {
		s := cloneSettings(*ds.Settings)
		if s.OverdueThreshold <= 0 {
			s.OverdueThreshold = d.settings.OverdueThreshold
		}
		if s.Brokers == nil {
			s.Brokers = d.settings.Brokers
		}
		d.settings = s
	}
	for _, st := range ds.SyncStates {
		d.statuses[st.Service] = st
	}

	d.logger.Debug("Loaded dataset", "clients", len(d.clients), "appointments", len(d.appts))
	return nil
}

// Clock returns the business clock.
func (d *Desk) Clock() *dates.Clock {
	return d.clock
}

// Hours returns the bookable business hours.
func (d *Desk) Hours() schedule.Hours {
	return d.hours
}

// Settings returns a copy of the current settings.
func (d *Desk) Settings() models.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneSettings(d.settings)
}

// SetBrokers replaces the broker list. Blank and repeated names are dropped.
func (d *Desk) SetBrokers(brokers []string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.settings.Brokers = uniqueNames(brokers)
	d.persistSettings()
	return slices.Clone(d.settings.Brokers)
}

// SetOverdueThreshold changes the number of days before a client is overdue.
func (d *Desk) SetOverdueThreshold(days int) error {
	if days < 1 {
		return ErrInvalidThreshold
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.settings.OverdueThreshold = days
	d.persistSettings()
	return nil
}

// SetCredentials stores the CRM credentials.
func (d *Desk) SetCredentials(creds models.Credentials) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.settings.Credentials = creds
	d.persistSettings()
}

// SetSyncStatus records the status of a sync source. A successful status also
// stamps the last sync time.
func (d *Desk) SetSyncStatus(service, status, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Time()
	st := d.statuses[service]
	st.Service = service
	st.Status = status
	st.Message = message
	st.UpdatedAt = now
	if status == models.SyncStatusOK {
		t := now
		st.LastSyncTime = &t
	}
	d.statuses[service] = st

	d.persist("save sync state", func(s Store) error { return s.SaveSyncState(st) })
}

// SyncStatuses returns the recorded statuses ordered by service name.
func (d *Desk) SyncStatuses() []models.SyncState {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.SyncState, 0, len(d.statuses))
	for _, st := range d.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

// Flush blocks until every queued write has reached the store.
func (d *Desk) Flush() {
	d.mu.Lock()
	if d.store == nil || d.closed {
		d.mu.Unlock()
		return
	}
	done := make(chan struct{})
	d.jobs <- persistJob{done: done}
	d.mu.Unlock()

	<-done
}

// Close drains pending writes and stops the persistence worker.
func (d *Desk) Close() error {
	d.mu.Lock()
	if d.store == nil || d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	<-d.stopped
	return nil
}

// persist queues a write. Callers hold d.mu, which keeps writes in mutation
// order. Failures are logged and never reach the caller.
func (d *Desk) persist(op string, fn func(Store) error) {
	if d.store == nil || d.closed {
		return
	}
	d.jobs <- persistJob{op: op, fn: fn}
}

func (d *Desk) persistSettings() {
	s := cloneSettings(d.settings)
	d.persist("save settings", func(st Store) error { return st.SaveSettings(s) })
}

func (d *Desk) runPersistence() {
	defer close(d.stopped)
	for job := range d.jobs {
		if job.fn != nil {
			if err := job.fn(d.store); err != nil {
				d.logger.Error("Persist failed", "op", job.op, "err", err)
			}
		}
		if job.done != nil {
			close(job.done)
		}
	}
}

func (d *Desk) grid() *schedule.Grid {
	return schedule.NewGrid(d.appts, d.settings.Lanes(), d.hours, d.clock)
}

func cloneSettings(s models.Settings) models.Settings {
	s.Brokers = slices.Clone(s.Brokers)
	return s
}

func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = trim(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
