// ABOUTME: Per-client meeting notes on the desk
// ABOUTME: Notes are append-only and keyed by the client's name
package desk

import (
	"fmt"
	"slices"

	"github.com/harperreed/brokerdesk/models"
	crmsync "github.com/harperreed/brokerdesk/sync"
	"github.com/oklog/ulid/v2"
)

// Notes returns the notes recorded for a client, oldest first.
func (d *Desk) Notes(clientName string) []models.Note {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.notes[d.canonicalName(clientName)])
}

// AddNote appends a note for an existing client. The note gets a
// time-ordered id and, when not given, the current business time.
func (d *Desk) AddNote(clientName string, n models.Note) (models.Note, error) {
	n.Note = trim(n.Note)
	if n.Note == "" {
		return models.Note{}, ErrEmptyNote
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c, found := crmsync.NewClientMatcher(d.clients).FindMatch(trim(clientName))
	if !found {
		return models.Note{}, fmt.Errorf("client %q: %w", clientName, ErrNotFound)
	}
	name := c.Name

	n.ID = ulid.Make().String()
	if n.Datetime == "" {
		n.Datetime = d.clock.FmtDateTime()
	}

	d.notes[name] = append(d.notes[name], n)
	d.persist("insert note", func(s Store) error { return s.InsertNote(name, n) })
	return n, nil
}

// canonicalName maps a name onto the stored spelling of a matching client.
func (d *Desk) canonicalName(name string) string {
	if c, found := crmsync.NewClientMatcher(d.clients).FindMatch(trim(name)); found {
		return c.Name
	}
	return name
}
