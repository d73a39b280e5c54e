// ABOUTME: Client directory operations on the desk
// ABOUTME: Manual add, lookup, broker assignment, merges and cascading deletes
package desk

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/brokerdesk/models"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

// DeleteResult counts what a cascading delete removed.
type DeleteResult struct {
	Clients      int `json:"clients"`
	Appointments int `json:"appointments"`
	Notes        int `json:"notes"`
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// Clients returns a copy of the client collection in insertion order.
func (d *Desk) Clients() []models.Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneClients(d.clients)
}

// Client returns the client with the given id.
func (d *Desk) Client(id string) (models.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.clientIndex(id)
	if i < 0 {
		return models.Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return cloneClient(d.clients[i]), nil
}

// ClientByName finds a client by case-insensitive name.
func (d *Desk) ClientByName(name string) (models.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := crmsync.NewClientMatcher(d.clients).FindMatch(trim(name))
	if !ok {
		return models.Client{}, fmt.Errorf("client %q: %w", name, ErrNotFound)
	}
	return cloneClient(*c), nil
}

// FindClients returns clients whose name, email or phone contains query,
// ignoring case. An empty query returns every client.
func (d *Desk) FindClients(query string) []models.Client {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := strings.ToLower(trim(query))
	var out []models.Client
	for _, c := range d.clients {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q) ||
			strings.Contains(c.Phone, q) {
			out = append(out, cloneClient(c))
		}
	}
	return out
}

// AddClient creates a client by hand. Names are unique ignoring case.
func (d *Desk) AddClient(c models.Client) (models.Client, error) {
	c.Name = trim(c.Name)
	if c.Name == "" {
		return models.Client{}, ErrEmptyName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, found := crmsync.NewClientMatcher(d.clients).FindMatch(c.Name); found {
		return models.Client{}, fmt.Errorf("%w: %s", ErrDuplicateClient, c.Name)
	}

	if c.ID == "" || d.clientIndex(c.ID) >= 0 {
		c.ID = uuid.New().String()
	}
	if c.ImportedFrom == "" {
		c.ImportedFrom = models.SourceManual
	}
	c.ManualBrokers = uniqueNames(c.ManualBrokers)

	d.clients = append(d.clients, c)
	d.persistClients(c)

	d.logger.Info("Added client", "name", c.Name)
	return cloneClient(c), nil
}

// SetClientBrokers replaces a client's manual broker assignments.
func (d *Desk) SetClientBrokers(id string, brokers []string) (models.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.clientIndex(id)
	if i < 0 {
		return models.Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}

	d.clients[i].ManualBrokers = uniqueNames(brokers)
	c := cloneClient(d.clients[i])
	d.persistClients(c)
	return c, nil
}

// BulkAssign adds person to the manual brokers of every selected client and
// returns how many clients were changed. Unknown ids are ignored.
func (d *Desk) BulkAssign(ids []string, person string) (int, error) {
	person = trim(person)
	if person == "" {
		return 0, ErrEmptyName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	selected := idSet(ids)
	var changed []models.Client
	for i := range d.clients {
		c := &d.clients[i]
		if !selected[c.ID] {
			continue
		}
		if !slices.Contains(c.ManualBrokers, person) {
			c.ManualBrokers = append(slices.Clone(c.ManualBrokers), person)
		}
		changed = append(changed, cloneClient(*c))
	}

	d.persistClients(changed...)
	return len(changed), nil
}

// BulkClearAssignments empties the manual brokers of every selected client.
func (d *Desk) BulkClearAssignments(ids []string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	selected := idSet(ids)
	var changed []models.Client
	for i := range d.clients {
		c := &d.clients[i]
		if !selected[c.ID] {
			continue
		}
		c.ManualBrokers = []string{}
		changed = append(changed, cloneClient(*c))
	}

	d.persistClients(changed...)
	return len(changed)
}

// DeleteClient removes a client together with its appointments and notes.
func (d *Desk) DeleteClient(id string, confirmed bool) (DeleteResult, error) {
	if !confirmed {
		return DeleteResult{}, ErrConfirmationRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.clientIndex(id) < 0 {
		return DeleteResult{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return d.deleteClients(idSet([]string{id})), nil
}

// BulkDelete applies the cascading delete to every selected client. Unknown
// ids are ignored.
func (d *Desk) BulkDelete(ids []string, confirmed bool) (DeleteResult, error) {
	if !confirmed {
		return DeleteResult{}, ErrConfirmationRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.deleteClients(idSet(ids)), nil
}

func (d *Desk) deleteClients(selected map[string]bool) DeleteResult {
	var res DeleteResult
	names := make(map[string]bool)

	kept := d.clients[:0:0]
	for _, c := range d.clients {
		if !selected[c.ID] {
			kept = append(kept, c)
			continue
		}
		names[c.Name] = true
		res.Clients++

		id, name := c.ID, c.Name
		d.persist("delete client", func(s Store) error { return s.DeleteClient(id, name) })
		d.logger.Info("Deleted client", "name", name)
	}
	d.clients = kept

	appts := d.appts[:0:0]
	for _, a := range d.appts {
		if names[a.ClientName] {
			res.Appointments++
			continue
		}
		appts = append(appts, a)
	}
	d.appts = appts

	for name := range names {
		res.Notes += len(d.notes[name])
		delete(d.notes, name)
	}

	return res
}

// MergeClients reconciles imported clients into the directory.
func (d *Desk) MergeClients(incoming []models.Client, source string) crmsync.MergeResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	merged, res := crmsync.MergeClients(d.clients, incoming, source)
	d.clients = merged
	d.persistClients(cloneClients(merged)...)

	d.logger.Info("Merged clients", "source", source, "created", res.Created, "updated", res.Updated)
	return res
}

func (d *Desk) persistClients(clients ...models.Client) {
	if len(clients) == 0 {
		return
	}
	d.persist("upsert clients", func(s Store) error { return s.UpsertClients(clients) })
}

func (d *Desk) clientIndex(id string) int {
	for i, c := range d.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func cloneClient(c models.Client) models.Client {
	c.ManualBrokers = slices.Clone(c.ManualBrokers)
	return c
}

func cloneClients(clients []models.Client) []models.Client {
	out := make([]models.Client, len(clients))
	for i, c := range clients {
		out[i] = cloneClient(c)
	}
	return out
}
