// ABOUTME: Appointment database operations
// ABOUTME: Upserts single bookings and swaps the synced set in one transaction
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/brokerdesk/models"
)

func UpsertAppointment(db *sql.DB, a *models.Appointment) error {
	return upsertAppointment(db, a)
}

func upsertAppointment(q execer, a *models.Appointment) error {
	_, err := q.Exec(`
		INSERT INTO appointments (id, broker, date, start_hour, duration, client_name, notes, from_pipedrive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			broker = excluded.broker,
			date = excluded.date,
			start_hour = excluded.start_hour,
			duration = excluded.duration,
			client_name = excluded.client_name,
			notes = excluded.notes,
			from_pipedrive = excluded.from_pipedrive,
			updated_at = CURRENT_TIMESTAMP
	`, a.ID, a.Broker, a.Date, a.StartHour, a.Duration, a.ClientName, a.Notes, a.FromPipedrive)
	if err != nil {
		return fmt.Errorf("failed to upsert appointment %s: %w", a.ID, err)
	}
	return nil
}

// ListAppointments returns every appointment in insertion order.
func ListAppointments(db *sql.DB) ([]models.Appointment, error) {
	rows, err := db.Query(`
		SELECT id, broker, date, start_hour, duration, client_name, notes, from_pipedrive
		FROM appointments
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appts []models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.Broker, &a.Date, &a.StartHour, &a.Duration, &a.ClientName, &a.Notes, &a.FromPipedrive); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}

	return appts, rows.Err()
}

func DeleteAppointment(db *sql.DB, id string) error {
	_, err := db.Exec(`DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// ReplaceSynced drops every synced appointment and stores appts in its place.
// Manual appointments are untouched.
func ReplaceSynced(db *sql.DB, appts []models.Appointment) error {
	return withTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM appointments WHERE from_pipedrive = 1`); err != nil {
			return fmt.Errorf("failed to clear synced appointments: %w", err)
		}
		for i := range appts {
			a := appts[i]
			a.FromPipedrive = true
			if err := upsertAppointment(tx, &a); err != nil {
				return err
			}
		}
		return nil
	})
}
