// ABOUTME: Client database operations
// ABOUTME: Upserts, listing in insertion order and cascading deletes of clients
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harperreed/brokerdesk/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertClients inserts or updates clients in one transaction.
func UpsertClients(db *sql.DB, clients []models.Client) error {
	if len(clients) == 0 {
		return nil
	}
	return withTx(db, func(tx *sql.Tx) error {
		for i := range clients {
			if err := upsertClient(tx, &clients[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertClient(q execer, c *models.Client) error {
	brokers := c.ManualBrokers
	if brokers == nil {
		brokers = []string{}
	}
	manual, err := json.Marshal(brokers)
	if err != nil {
		return fmt.Errorf("failed to encode manual brokers: %w", err)
	}

	_, err = q.Exec(`
		INSERT INTO clients (id, name, phone, email, imported_from, contact_source, assigned_broker, manual_brokers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			imported_from = excluded.imported_from,
			contact_source = excluded.contact_source,
			assigned_broker = excluded.assigned_broker,
			manual_brokers = excluded.manual_brokers,
			updated_at = CURRENT_TIMESTAMP
	`, c.ID, c.Name, c.Phone, c.Email, c.ImportedFrom, c.ContactSource, c.AssignedBroker, string(manual))
	if err != nil {
		return fmt.Errorf("failed to upsert client %s: %w", c.ID, err)
	}
	return nil
}

// ListClients returns every client in insertion order.
func ListClients(db *sql.DB) ([]models.Client, error) {
	rows, err := db.Query(`
		SELECT id, name, phone, email, imported_from, contact_source, assigned_broker, manual_brokers
		FROM clients
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		var manual string
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.ImportedFrom, &c.ContactSource, &c.AssignedBroker, &manual); err != nil {
			return nil, err
		}
		if manual != "" {
			if err := json.Unmarshal([]byte(manual), &c.ManualBrokers); err != nil {
				return nil, fmt.Errorf("failed to decode manual brokers for %s: %w", c.ID, err)
			}
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

// DeleteClient removes a client with its appointments and notes. Appointments
// and notes are matched on the exact client name.
func DeleteClient(db *sql.DB, id, name string) error {
	return withTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM clients WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM appointments WHERE client_name = ?`, name); err != nil {
			return fmt.Errorf("failed to delete client appointments: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM notes WHERE client_name = ?`, name); err != nil {
			return fmt.Errorf("failed to delete client notes: %w", err)
		}
		return nil
	})
}

func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
