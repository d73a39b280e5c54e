// ABOUTME: Client note database operations
// ABOUTME: Append-only notes grouped by client name
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/brokerdesk/models"
)

func InsertNote(db *sql.DB, clientName string, n *models.Note) error {
	return insertNote(db, clientName, n)
}

func insertNote(q execer, clientName string, n *models.Note) error {
	_, err := q.Exec(`
		INSERT INTO notes (id, client_name, datetime, broker, note, follow_up, next_steps)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, clientName, n.Datetime, n.Broker, n.Note, n.FollowUp, n.NextSteps)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// ListNotes returns every note grouped by client name, oldest first.
func ListNotes(db *sql.DB) (map[string][]models.Note, error) {
	rows, err := db.Query(`
		SELECT id, client_name, datetime, broker, note, follow_up, next_steps
		FROM notes
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make(map[string][]models.Note)
	for rows.Next() {
		var n models.Note
		var clientName string
		if err := rows.Scan(&n.ID, &clientName, &n.Datetime, &n.Broker, &n.Note, &n.FollowUp, &n.NextSteps); err != nil {
			return nil, err
		}
		notes[clientName] = append(notes[clientName], n)
	}

	return notes, rows.Err()
}
