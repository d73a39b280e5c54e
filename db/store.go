// ABOUTME: Store adapter exposing the database operations as the desk persistence layer
// ABOUTME: Loads the full dataset and replaces it wholesale on snapshot import
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/brokerdesk/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// LoadAll reads every table into a dataset.
func (s *Store) LoadAll() (*models.Dataset, error) {
	clients, err := ListClients(s.db)
	if err != nil {
		return nil, err
	}
	appts, err := ListAppointments(s.db)
	if err != nil {
		return nil, err
	}
	notes, err := ListNotes(s.db)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(s.db)
	if err != nil {
		return nil, err
	}
	states, err := GetAllSyncStates(s.db)
	if err != nil {
		return nil, err
	}

	return &models.Dataset{
		Clients:      clients,
		Appointments: appts,
		Notes:        notes,
		Settings:     settings,
		SyncStates:   states,
	}, nil
}

func (s *Store) UpsertClients(clients []models.Client) error {
	return UpsertClients(s.db, clients)
}

func (s *Store) DeleteClient(id, name string) error {
	return DeleteClient(s.db, id, name)
}

func (s *Store) UpsertAppointment(a models.Appointment) error {
	return UpsertAppointment(s.db, &a)
}

func (s *Store) DeleteAppointment(id string) error {
	return DeleteAppointment(s.db, id)
}

func (s *Store) ReplaceSynced(appts []models.Appointment) error {
	return ReplaceSynced(s.db, appts)
}

func (s *Store) InsertNote(clientName string, n models.Note) error {
	return InsertNote(s.db, clientName, &n)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	return SaveSettings(s.db, &settings)
}

func (s *Store) SaveSyncState(st models.SyncState) error {
	return SaveSyncState(s.db, &st)
}

// ReplaceAll clears clients, appointments and notes and writes ds in their
// place. Settings are saved when present. Sync state is kept.
func (s *Store) ReplaceAll(ds *models.Dataset) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		for _, table := range []string{"clients", "appointments", "notes"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		for i := range ds.Clients {
			if err := upsertClient(tx, &ds.Clients[i]); err != nil {
				return err
			}
		}
		for i := range ds.Appointments {
			if err := upsertAppointment(tx, &ds.Appointments[i]); err != nil {
				return err
			}
		}
		for name, notes := range ds.Notes {
			for i := range notes {
				if err := insertNote(tx, name, &notes[i]); err != nil {
					return err
				}
			}
		}
		if ds.Settings != nil {
			return saveSettings(tx, ds.Settings)
		}
		return nil
	})
}
