// ABOUTME: Sync orchestration for Pipedrive, Redtail and CSV imports
// ABOUTME: Fetches outside the state lock, applies each completed step and records per-source status
package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/brokerdesk/models"
	"github.com/harperreed/brokerdesk/schedule"
)

var (
	// ErrMissingCredentials is returned when a source is synced before its credentials are set.
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnknownSource      = errors.New("unknown sync source")
)

// Status messages shown while a sync runs.
const (
	MsgPipedriveToken   = "Enter your Pipedrive API token first."
	MsgRedtailCreds     = "Enter credentials first."
	MsgPipedriveFields  = "Step 1/3: Fetching custom field definitions…"
	MsgPipedrivePersons = "Step 2/3: Fetching contacts…"
	MsgPipedriveActs    = "Step 3/3: Fetching activities…"
	MsgRedtailConnect   = "Connecting to Redtail…"
)

// Target receives the results of each sync step. desk.Desk implements it.
type Target interface {
	Settings() models.Settings
	MergeClients(incoming []models.Client, source string) MergeResult
	ReplaceSynced(fetched []models.Appointment) []models.Appointment
	SetSyncStatus(service, status, message string)
}

// Result summarizes one completed sync.
type Result struct {
	Source     string      `json:"source"`
	Contacts   int         `json:"contacts"`
	Activities int         `json:"activities"`
	Merge      MergeResult `json:"merge"`
	Message    string      `json:"message"`
}

// Options configures a Syncer.
type Options struct {
	Hours          schedule.Hours
	PipedriveProxy string
	RedtailBaseURL string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *log.Logger
	Now            func() time.Time

	// Credentials set here take precedence over the stored ones.
	Credentials models.Credentials
}

type Syncer struct {
	target Target
	opts   Options
	logger *log.Logger
}

func NewSyncer(target Target, opts Options) *Syncer {
	if opts.Hours == (schedule.Hours{}) {
		opts.Hours = schedule.DefaultHours()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{
		target: target,
		opts:   opts,
		logger: logger.WithPrefix("sync"),
	}
}

// Sync runs the named source.
func (s *Syncer) Sync(ctx context.Context, source string) (*Result, error) {
	switch source {
	case models.SourcePipedrive:
		return s.SyncPipedrive(ctx)
	case models.SourceRedtail:
		return s.SyncRedtail(ctx)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, source)
	}
}

// SyncPipedrive imports persons and activities. Contacts are merged as soon as
// they arrive, so a failure fetching activities keeps the merged contacts.
func (s *Syncer) SyncPipedrive(ctx context.Context) (*Result, error) {
	const source = models.SourcePipedrive

	settings := s.target.Settings()
	creds := s.credentials(settings)
	client := NewPipedriveClient(PipedriveConfig{
		ProxyURL:   s.opts.PipedriveProxy,
		Token:      creds.PipedriveToken,
		Timeout:    s.opts.Timeout,
		HTTPClient: s.opts.HTTPClient,
	})
	if client == nil {
		s.target.SetSyncStatus(source, models.SyncStatusIdle, MsgPipedriveToken)
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, MsgPipedriveToken)
	}

	s.logger.Info("Starting sync", "source", source)

	s.target.SetSyncStatus(source, models.SyncStatusSyncing, MsgPipedriveFields)
	fields, err := client.PersonFields(ctx)
	if err != nil {
		return nil, s.fail(source, err)
	}
	sourceField := FindSourceField(fields)

	s.target.SetSyncStatus(source, models.SyncStatusSyncing, MsgPipedrivePersons)
	persons, err := client.Persons(ctx)
	if err != nil {
		return nil, s.fail(source, err)
	}

	contacts, names := MapPersons(persons, sourceField, settings.Brokers)
	merge := s.target.MergeClients(contacts, source)
	s.logger.Debug("Merged contacts", "source", source, "created", merge.Created, "updated", merge.Updated)

	s.target.SetSyncStatus(source, models.SyncStatusSyncing, MsgPipedriveActs)
	acts, ok, err := client.Activities(ctx)
	if err != nil {
		return nil, s.fail(source, err)
	}

	var appts []models.Appointment
	if ok {
		appts = MapActivities(acts, names, settings.Brokers, s.opts.Hours)
		s.target.ReplaceSynced(appts)
	} else {
		s.logger.Warn("Activities request unsuccessful, keeping synced appointments", "source", source)
	}

	res := &Result{
		Source:     source,
		Contacts:   len(contacts),
		Activities: len(appts),
		Merge:      merge,
		Message:    fmt.Sprintf("✓ Synced %d contacts + %d activities.", len(contacts), len(appts)),
	}
	s.target.SetSyncStatus(source, models.SyncStatusOK, res.Message)
	s.logger.Info("Sync complete", "source", source, "contacts", res.Contacts, "activities", res.Activities)

	return res, nil
}

// SyncRedtail imports contacts from Redtail.
func (s *Syncer) SyncRedtail(ctx context.Context) (*Result, error) {
	const source = models.SourceRedtail

	creds := s.credentials(s.target.Settings())
	client := NewRedtailClient(RedtailConfig{
		BaseURL:    s.opts.RedtailBaseURL,
		User:       creds.RedtailUser,
		Key:        creds.RedtailKey,
		Timeout:    s.opts.Timeout,
		HTTPClient: s.opts.HTTPClient,
	})
	if client == nil {
		s.target.SetSyncStatus(source, models.SyncStatusIdle, MsgRedtailCreds)
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, MsgRedtailCreds)
	}

	s.logger.Info("Starting sync", "source", source)
	s.target.SetSyncStatus(source, models.SyncStatusSyncing, MsgRedtailConnect)

	raw, err := client.Contacts(ctx)
	if err != nil {
		return nil, s.fail(source, err)
	}

	contacts := MapRedtailContacts(raw)
	merge := s.target.MergeClients(contacts, source)

	res := &Result{
		Source:   source,
		Contacts: len(contacts),
		Merge:    merge,
		Message:  fmt.Sprintf("✓ Synced %d contacts from Redtail.", len(contacts)),
	}
	s.target.SetSyncStatus(source, models.SyncStatusOK, res.Message)
	s.logger.Info("Sync complete", "source", source, "contacts", res.Contacts)

	return res, nil
}

// ImportCSV parses CSV text and merges the clients with source csv. Text
// without a name column merges nothing.
func (s *Syncer) ImportCSV(text string) (*Result, error) {
	const source = models.SourceCSV

	clients, err := ParseCSV(text, s.opts.Now())
	if err != nil {
		s.target.SetSyncStatus(source, models.SyncStatusError, "Could not parse CSV.")
		return nil, err
	}

	merge := s.target.MergeClients(clients, source)
	res := &Result{
		Source:   source,
		Contacts: len(clients),
		Merge:    merge,
		Message:  fmt.Sprintf("✓ Imported %d clients.", len(clients)),
	}
	s.target.SetSyncStatus(source, models.SyncStatusOK, res.Message)
	s.logger.Info("CSV import complete", "clients", res.Contacts, "created", merge.Created)

	return res, nil
}

func (s *Syncer) credentials(settings models.Settings) models.Credentials {
	creds := settings.Credentials
	if s.opts.Credentials.PipedriveToken != "" {
		creds.PipedriveToken = s.opts.Credentials.PipedriveToken
	}
	if s.opts.Credentials.RedtailUser != "" {
		creds.RedtailUser = s.opts.Credentials.RedtailUser
	}
	if s.opts.Credentials.RedtailKey != "" {
		creds.RedtailKey = s.opts.Credentials.RedtailKey
	}
	return creds
}

func (s *Syncer) fail(source string, err error) error {
	s.logger.Error("Sync failed", "source", source, "err", err)
	s.target.SetSyncStatus(source, models.SyncStatusError, "Error: "+err.Error())
	return fmt.Errorf("%s sync: %w", source, err)
}
