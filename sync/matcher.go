// ABOUTME: Client deduplication and matching logic
// ABOUTME: Finds existing clients by case-insensitive name to prevent duplicates during import
package sync

import (
	"strings"

	"github.com/harperreed/brokerdesk/models"
)

type ClientMatcher struct {
	byName map[string]*models.Client
}

// NewClientMatcher creates a matcher from existing clients. When two clients
// share a name key the first one wins.
func NewClientMatcher(clients []models.Client) *ClientMatcher {
	m := &ClientMatcher{
		byName: make(map[string]*models.Client, len(clients)),
	}

	for i := range clients {
		m.add(&clients[i])
	}

	return m
}

// FindMatch looks for an existing client by name, ignoring case.
func (m *ClientMatcher) FindMatch(name string) (*models.Client, bool) {
	key := normalizeName(name)
	if key == "" {
		return nil, false
	}

	client, found := m.byName[key]
	return client, found
}

// AddClient registers a newly created client so later records in the same
// import do not create it twice.
func (m *ClientMatcher) AddClient(client *models.Client) {
	m.add(client)
}

func (m *ClientMatcher) add(client *models.Client) {
	key := normalizeName(client.Name)
	if key == "" {
		return
	}
	if _, exists := m.byName[key]; !exists {
		m.byName[key] = client
	}
}

// normalizeName converts a client name to its identity key.
func normalizeName(name string) string {
	return models.NameKey(name)
}

// firstToken returns the first whitespace separated word of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
