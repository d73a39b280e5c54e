// ABOUTME: Appointment operations on the desk
// ABOUTME: Grid-validated booking and editing plus replacement of synced appointments
package desk

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/harperreed/brokerdesk/models"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

// Appointments returns a copy of every appointment.
func (d *Desk) Appointments() []models.Appointment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.appts)
}

// Appointment returns the appointment with the given id.
func (d *Desk) Appointment(id string) (models.Appointment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.apptIndex(id)
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return d.appts[i], nil
}

// Book creates a manual appointment. Booking a name the directory does not know
// also creates a manual client assigned to the booking lane; a known name is
// stored with the client's spelling.
func (d *Desk) Book(a models.Appointment) (models.Appointment, error) {
	a.ClientName = trim(a.ClientName)
	a.ID = uuid.New().String()
	a.FromPipedrive = false

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.normalizeDate(&a); err != nil {
		return models.Appointment{}, err
	}

	existing, found := crmsync.NewClientMatcher(d.clients).FindMatch(a.ClientName)
	if found {
		a.ClientName = existing.Name
	}

	if err := d.grid().ValidateNew(a); err != nil {
		return models.Appointment{}, err
	}

	d.appts = append(d.appts, a)
	d.persist("upsert appointment", func(s Store) error { return s.UpsertAppointment(a) })

	if !found {
		c := models.Client{
			ID:             uuid.New().String(),
			Name:           a.ClientName,
			ImportedFrom:   models.SourceManual,
			AssignedBroker: a.Broker,
		}
		d.clients = append(d.clients, c)
		d.persistClients(c)
		d.logger.Info("Created client from booking", "name", c.Name, "broker", c.AssignedBroker)
	}

	d.logger.Info("Booked appointment", "client", a.ClientName, "broker", a.Broker, "date", a.Date, "start", a.StartHour)
	return a, nil
}

// UpdateAppointment replaces an existing appointment. The edit may move it in
// time or across lanes but must not overlap another appointment.
func (d *Desk) UpdateAppointment(a models.Appointment) (models.Appointment, error) {
	a.ClientName = trim(a.ClientName)

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.apptIndex(a.ID)
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("appointment %s: %w", a.ID, ErrNotFound)
	}
	a.FromPipedrive = d.appts[i].FromPipedrive
	if err := d.normalizeDate(&a); err != nil {
		return models.Appointment{}, err
	}
	a.ClientName = d.canonicalName(a.ClientName)

	if err := d.grid().Validate(a); err != nil {
		return models.Appointment{}, err
	}

	d.appts[i] = a
	d.persist("upsert appointment", func(s Store) error { return s.UpsertAppointment(a) })
	return a, nil
}

// DeleteAppointment removes one appointment.
func (d *Desk) DeleteAppointment(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.apptIndex(id)
	if i < 0 {
		return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}

	d.appts = slices.Delete(d.appts, i, i+1)
	d.persist("delete appointment", func(s Store) error { return s.DeleteAppointment(id) })
	return nil
}

// ReplaceSynced swaps the synced appointments for fetched ones, keeping every
// manual appointment. It returns the synced appointments that were kept.
func (d *Desk) ReplaceSynced(fetched []models.Appointment) []models.Appointment {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.appts = crmsync.MergeSynced(d.appts, fetched)

	var synced []models.Appointment
	for _, a := range d.appts {
		if a.FromPipedrive {
			synced = append(synced, a)
		}
	}
	d.persist("replace synced appointments", func(s Store) error { return s.ReplaceSynced(synced) })

	d.logger.Info("Replaced synced appointments", "fetched", len(fetched), "kept", len(synced))
	return slices.Clone(synced)
}

// normalizeDate rewrites a.Date as a business-timezone date key. Timestamps
// are converted; anything that is not a real calendar date is rejected.
func (d *Desk) normalizeDate(a *models.Appointment) error {
	key, err := d.clock.NormalizeKey(a.Date)
	if err != nil {
		return err
	}
	if _, err := d.clock.ParseKey(key); err != nil {
		return err
	}
	a.Date = key
	return nil
}

func (d *Desk) apptIndex(id string) int {
	for i, a := range d.appts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
