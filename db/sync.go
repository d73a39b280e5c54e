// ABOUTME: Database operations for the sync_state table
// ABOUTME: Tracks status, message and last successful sync time per CRM source
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/brokerdesk/models"
)

// GetSyncState retrieves the sync state for a service. It returns nil when the
// service has never synced.
func GetSyncState(db *sql.DB, service string) (*models.SyncState, error) {
	var state models.SyncState
	var lastSyncTime sql.NullTime
	var message sql.NullString
	var status sql.NullString

	err := db.QueryRow(`
		SELECT service, last_sync_time, status, message, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(
		&state.Service,
		&lastSyncTime,
		&status,
		&message,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	fillSyncState(&state, lastSyncTime, status, message)
	return &state, nil
}

// UpdateSyncStatus updates the status and message for a service. A nil
// lastSync keeps the stored last sync time.
func UpdateSyncStatus(db *sql.DB, service, status, message string, lastSync *sql.NullTime) error {
	var last sql.NullTime
	if lastSync != nil {
		last = *lastSync
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, message, last_sync_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			message = excluded.message,
			last_sync_time = COALESCE(excluded.last_sync_time, sync_state.last_sync_time),
			updated_at = CURRENT_TIMESTAMP
	`, service, status, message, last)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// SaveSyncState stores a full state record.
func SaveSyncState(db *sql.DB, st *models.SyncState) error {
	var last *sql.NullTime
	if st.LastSyncTime != nil {
		last = &sql.NullTime{Time: *st.LastSyncTime, Valid: true}
	}
	return UpdateSyncStatus(db, st.Service, st.Status, st.Message, last)
}

// GetAllSyncStates retrieves the sync state for all services.
func GetAllSyncStates(db *sql.DB) ([]models.SyncState, error) {
	rows, err := db.Query(`
		SELECT service, last_sync_time, status, message, updated_at
		FROM sync_state
		ORDER BY service
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []models.SyncState
	for rows.Next() {
		var state models.SyncState
		var lastSyncTime sql.NullTime
		var status sql.NullString
		var message sql.NullString

		err := rows.Scan(
			&state.Service,
			&lastSyncTime,
			&status,
			&message,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}

		fillSyncState(&state, lastSyncTime, status, message)
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}

	return states, nil
}

func fillSyncState(state *models.SyncState, lastSyncTime sql.NullTime, status, message sql.NullString) {
	if lastSyncTime.Valid {
		t := lastSyncTime.Time
		state.LastSyncTime = &t
	}
	state.Status = models.SyncStatusIdle
	if status.Valid && status.String != "" {
		state.Status = status.String
	}
	if message.Valid {
		state.Message = message.String
	}
}
