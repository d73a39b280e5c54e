// ABOUTME: Pipedrive importer mapping persons to clients and activities to appointments
// ABOUTME: Resolves the contact source custom field and snaps activity times onto the slot grid
package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
	"github.com/harperreed/brokerdesk/schedule"
)

// SourceField is the resolved "contact source" person field.
type SourceField struct {
	Key     string
	Options map[string]string // option id -> label, nil when the field has no options
}

// FindSourceField picks the first person field whose name contains "source"
// and that declares a field type.
func FindSourceField(fields []PersonField) *SourceField {
	for _, f := range fields {
		if f.Name == "" || len(f.FieldType) == 0 {
			continue
		}
		if !strings.Contains(strings.ToLower(f.Name), "source") {
			continue
		}

		sf := &SourceField{Key: f.Key}
		if f.Options != nil {
			sf.Options = make(map[string]string, len(f.Options))
			for _, o := range f.Options {
				sf.Options[o.ID.String()] = o.Label
			}
		}
		return sf
	}
	return nil
}

// contactSource reads the person's source field, mapping option ids to labels.
func (sf *SourceField) contactSource(p *Person) string {
	if sf == nil || sf.Key == "" {
		return ""
	}
	raw, ok := p.Fields[sf.Key]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var val flexString
	if err := json.Unmarshal(raw, &val); err != nil {
		return string(raw)
	}
	if sf.Options != nil {
		if label, ok := sf.Options[val.String()]; ok {
			return label
		}
	}
	return val.String()
}

// MapPersons converts persons to clients and returns the person id to name map
// used to resolve activity clients. Nameless persons are dropped from the
// client list.
func MapPersons(persons []Person, source *SourceField, brokers []string) ([]models.Client, map[string]string) {
	clients := make([]models.Client, 0, len(persons))
	names := make(map[string]string, len(persons))

	for i := range persons {
		p := &persons[i]

		if p.ID.present() {
			names[p.ID.String()] = p.Name
		}
		if p.Name == "" {
			continue
		}

		id := p.ID.String()
		if !p.ID.present() {
			id = strconv.Itoa(i)
		}

		clients = append(clients, models.Client{
			ID:             "pd_" + id,
			Name:           p.Name,
			Phone:          p.Phone.first(func(v contactValue) flexString { return v.Value }),
			Email:          p.Email.first(func(v contactValue) flexString { return v.Value }),
			ImportedFrom:   models.SourcePipedrive,
			ContactSource:  source.contactSource(p),
			AssignedBroker: InferBroker(p.OwnerDisplayName(), brokers),
		})
	}

	return clients, names
}

// MapActivities converts activities to synced appointments. Activities without
// a due date, a linked person or a resolvable client name are skipped, as are
// activities starting at or after closing time.
func MapActivities(acts []Activity, names map[string]string, brokers []string, hours schedule.Hours) []models.Appointment {
	appts := make([]models.Appointment, 0, len(acts))

	for _, act := range acts {
		if act.DueDate == "" || !act.PersonID.present() {
			continue
		}
		if _, err := time.Parse(dates.KeyLayout, act.DueDate); err != nil {
			continue
		}

		clientName := names[act.PersonID.String()]
		if clientName == "" {
			clientName = act.PersonName
		}
		if clientName == "" {
			continue
		}

		start, ok := StartHour(act.DueTime, hours)
		if !ok {
			continue
		}

		notes := act.Subject
		if notes == "" {
			notes = act.Type
		}

		appts = append(appts, models.Appointment{
			ID:            "pd_act_" + act.ID.String(),
			Broker:        ActivityBroker(act.OwnerName, brokers),
			Date:          act.DueDate,
			StartHour:     start,
			Duration:      BucketDuration(act.Duration),
			ClientName:    clientName,
			Notes:         notes,
			FromPipedrive: true,
		})
	}

	return appts
}

// StartHour snaps an "HH:MM" due time onto the half-hour grid. Minutes other
// than :00 and :30 round up to the next half hour, times before opening clamp
// to opening, and ok is false for times at or after closing or that do not parse.
// An empty due time starts at opening.
func StartHour(dueTime string, hours schedule.Hours) (float64, bool) {
	if strings.TrimSpace(dueTime) == "" {
		return hours.Open, true
	}

	h, m, err := parseClock(dueTime)
	if err != nil {
		return 0, false
	}

	start := float64(h) + math.Ceil(float64(m)/30)*schedule.SlotLength
	if start < hours.Open {
		start = hours.Open
	}
	if start >= hours.Close {
		return 0, false
	}
	return start, true
}

// BucketDuration converts an "HH:MM" duration into a slot length of 1, 1.5 or 2
// hours. Empty or malformed durations are one hour.
func BucketDuration(duration string) float64 {
	if strings.TrimSpace(duration) == "" {
		return 1
	}
	h, m, err := parseClock(duration)
	if err != nil {
		return 1
	}

	hrs := float64(h) + float64(m)/60
	switch {
	case hrs <= 1:
		return 1
	case hrs <= 1.5:
		return 1.5
	default:
		return 2
	}
}

// parseClock reads "HH:MM" or "HH:MM:SS", ignoring seconds.
func parseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
