// ABOUTME: Redtail importer mapping CRM contacts to clients
// ABOUTME: Builds display names from first and last name and drops unnamed contacts
package sync

import (
	"strconv"
	"strings"

	"github.com/harperreed/brokerdesk/models"
)

// unknownName is the placeholder Redtail shows for contacts without a name.
const unknownName = "Unknown"

// MapRedtailContacts converts Redtail contacts to clients. Redtail carries no
// owner information, so AssignedBroker stays empty.
func MapRedtailContacts(contacts []RedtailContact) []models.Client {
	clients := make([]models.Client, 0, len(contacts))

	for i, rc := range contacts {
		name := redtailName(rc)
		if name == "" || name == unknownName {
			continue
		}

		id := rc.ID.String()
		if !rc.ID.present() {
			id = strconv.Itoa(i)
		}

		source := rc.Source.String()
		if source == "" {
			source = rc.Category.String()
		}

		clients = append(clients, models.Client{
			ID:            "rt_" + id,
			Name:          name,
			Phone:         rc.Phones.first(func(v contactValue) flexString { return v.Number }),
			Email:         rc.Emails.first(func(v contactValue) flexString { return v.Address }),
			ImportedFrom:  models.SourceRedtail,
			ContactSource: source,
		})
	}

	return clients
}

func redtailName(rc RedtailContact) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{rc.FirstName, rc.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
