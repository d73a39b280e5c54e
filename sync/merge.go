// ABOUTME: Merge and reconciliation of imported clients and synced appointments
// ABOUTME: Idempotent name-keyed client merge and manual-preserving activity replacement
package sync

import (
	"github.com/google/uuid"
	"github.com/harperreed/brokerdesk/models"
)

// MergeResult summarizes a client merge.
type MergeResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// MergeClients reconciles incoming records against the existing collection by
// case-insensitive name. Matched clients keep their local phone and email and
// take the incoming broker and source tag only when those are non-empty.
// Unmatched incoming records are appended stamped with source. The first
// incoming record for a name wins. Merging the same batch twice yields the
// same collection.
func MergeClients(existing, incoming []models.Client, source string) ([]models.Client, MergeResult) {
	merged := make([]models.Client, len(existing), len(existing)+len(incoming))
	for i, c := range existing {
		merged[i] = cloneClient(c)
	}

	index := make(map[string]int, len(merged))
	ids := make(map[string]bool, len(merged))
	for i, c := range merged {
		key := normalizeName(c.Name)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
		ids[c.ID] = true
	}

	var result MergeResult
	touched := make(map[int]bool)

	for _, in := range incoming {
		key := normalizeName(in.Name)
		if key == "" {
			continue
		}

		if i, found := index[key]; found {
			if i >= len(existing) || touched[i] {
				continue
			}
			c := &merged[i]
			c.ImportedFrom = source
			if c.Phone == "" {
				c.Phone = in.Phone
			}
			if c.Email == "" {
				c.Email = in.Email
			}
			if in.AssignedBroker != "" {
				c.AssignedBroker = in.AssignedBroker
			}
			if in.ContactSource != "" {
				c.ContactSource = in.ContactSource
			}
			touched[i] = true
			result.Updated++
			continue
		}

		c := cloneClient(in)
		c.ImportedFrom = source
		if c.ID == "" || ids[c.ID] {
			c.ID = uuid.New().String()
		}
		ids[c.ID] = true
		index[key] = len(merged)
		merged = append(merged, c)
		result.Created++
	}

	return merged, result
}

// MergeSynced replaces previously synced appointments with fetched ones. Manual
// appointments always survive, and a fetched appointment that lands on the same
// date, broker and start hour as a manual one is dropped.
func MergeSynced(current, fetched []models.Appointment) []models.Appointment {
	type slotKey struct {
		date   string
		broker string
		start  float64
	}

	out := make([]models.Appointment, 0, len(current)+len(fetched))
	taken := make(map[slotKey]bool)
	for _, a := range current {
		if a.FromPipedrive {
			continue
		}
		out = append(out, a)
		taken[slotKey{a.Date, a.Broker, a.StartHour}] = true
	}

	for _, a := range fetched {
		if taken[slotKey{a.Date, a.Broker, a.StartHour}] {
			continue
		}
		a.FromPipedrive = true
		out = append(out, a)
	}

	return out
}

func cloneClient(c models.Client) models.Client {
	if c.ManualBrokers != nil {
		c.ManualBrokers = append([]string(nil), c.ManualBrokers...)
	}
	return c
}
