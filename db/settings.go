// ABOUTME: Settings database operations
// ABOUTME: Stores each setting as a JSON value under its key
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harperreed/brokerdesk/models"
)

// Setting keys.
const (
	SettingBrokers          = "brokers"
	SettingOverdueThreshold = "overdueThreshold"
	SettingCredentials      = "creds"
)

// SaveSetting upserts one JSON-encoded setting.
func SaveSetting(db *sql.DB, key string, value interface{}) error {
	return saveSetting(db, key, value)
}

func saveSetting(q execer, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	_, err = q.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// SaveSettings stores every settings key in one transaction.
func SaveSettings(db *sql.DB, s *models.Settings) error {
	return withTx(db, func(tx *sql.Tx) error {
		return saveSettings(tx, s)
	})
}

func saveSettings(q execer, s *models.Settings) error {
	brokers := s.Brokers
	if brokers == nil {
		brokers = []string{}
	}
	if err := saveSetting(q, SettingBrokers, brokers); err != nil {
		return err
	}
	if err := saveSetting(q, SettingOverdueThreshold, s.OverdueThreshold); err != nil {
		return err
	}
	return saveSetting(q, SettingCredentials, s.Credentials)
}

// LoadSettings reads the stored settings. It returns nil when nothing was
// ever stored. Missing keys stay at their zero value.
func LoadSettings(db *sql.DB) (*models.Settings, error) {
	rows, err := db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	var s *models.Settings
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if s == nil {
			s = &models.Settings{}
		}

		var target interface{}
		switch key {
		case SettingBrokers:
			target = &s.Brokers
		case SettingOverdueThreshold:
			target = &s.OverdueThreshold
		case SettingCredentials:
			target = &s.Credentials
		default:
			continue
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return nil, fmt.Errorf("failed to decode setting %s: %w", key, err)
		}
	}

	return s, rows.Err()
}
