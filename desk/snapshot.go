// ABOUTME: Full-state snapshot export and import
// ABOUTME: Import overwrites only the top-level keys present in the document
package desk

import (
	"slices"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/brokerdesk/models"
)

// Export returns the whole dataset as a snapshot document.
func (d *Desk) Export() models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	threshold := d.settings.OverdueThreshold
	notes := make(map[string][]models.Note, len(d.notes))
	for name, list := range d.notes {
		notes[name] = slices.Clone(list)
	}

	return models.Snapshot{
		Appointments:     nonNil(slices.Clone(d.appts)),
		Clients:          nonNil(cloneClients(d.clients)),
		Brokers:          nonNil(slices.Clone(d.settings.Brokers)),
		OverdueThreshold: &threshold,
		Notes:            notes,
	}
}

// Import overwrites every collection present in snap and leaves absent ones alone.
// Records with a missing or repeated id get a fresh one so every row persists.
func (d *Desk) Import(snap models.Snapshot) error {
	if snap.OverdueThreshold != nil && *snap.OverdueThreshold < 1 {
		return ErrInvalidThreshold
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if snap.Appointments != nil {
		d.appts = slices.Clone(snap.Appointments)
		seen := make(map[string]bool, len(d.appts))
		for i := range d.appts {
			d.appts[i].ID = freshID(seen, d.appts[i].ID, uuid.NewString)
		}
	}
	if snap.Clients != nil {
		d.clients = cloneClients(snap.Clients)
		seen := make(map[string]bool, len(d.clients))
		for i := range d.clients {
			d.clients[i].ID = freshID(seen, d.clients[i].ID, uuid.NewString)
		}
	}
	if snap.Notes != nil {
		d.notes = make(map[string][]models.Note, len(snap.Notes))
		seen := make(map[string]bool)
		for name, list := range snap.Notes {
			list = slices.Clone(list)
			for i := range list {
				list[i].ID = freshID(seen, list[i].ID, func() string { return ulid.Make().String() })
			}
			d.notes[name] = list
		}
	}
	if snap.Brokers != nil {
		d.settings.Brokers = uniqueNames(snap.Brokers)
	}
	if snap.OverdueThreshold != nil {
		d.settings.OverdueThreshold = *snap.OverdueThreshold
	}

	ds := &models.Dataset{
		Clients:      cloneClients(d.clients),
		Appointments: slices.Clone(d.appts),
		Notes:        make(map[string][]models.Note, len(d.notes)),
	}
	for name, list := range d.notes {
		ds.Notes[name] = slices.Clone(list)
	}
	s := cloneSettings(d.settings)
	ds.Settings = &s
	d.persist("replace dataset", func(st Store) error { return st.ReplaceAll(ds) })

	d.logger.Info("Imported snapshot", "clients", len(d.clients), "appointments", len(d.appts))
	return nil
}

// freshID returns id unless it is empty or already in seen, in which case it
// returns a new one. The result is added to seen.
func freshID(seen map[string]bool, id string, next func() string) string {
	if id == "" || seen[id] {
		id = next()
	}
	seen[id] = true
	return id
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
