// ABOUTME: Tests for the Pipedrive person and activity mapping
// ABOUTME: Covers source field resolution, owner inference, time snapping and duration buckets
package sync

import (
	"encoding/json"
	"testing"

	"github.com/harperreed/brokerdesk/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personFieldsJSON = `[
	{"key": "name", "name": "Name", "field_type": "varchar"},
	{"key": "abc123", "name": "Lead Source", "field_type": "enum", "options": [
		{"id": 7, "label": "Referral"},
		{"id": 8, "label": "Seminar"}
	]}
]`

const personsJSON = `[
	{"id": 1, "name": "Amy Chen", "owner_name": "Amy Lee", "phone": [{"value": "555-0100", "primary": true}], "email": [{"value": "amy@example.com"}], "abc123": "7"},
	{"id": 2, "name": "Ben Ortiz", "owner_id": {"id": 9, "name": "Unknown Person"}, "abc123": 99},
	{"id": 3, "name": "", "owner_name": "Amy Lee"},
	{"id": 4, "name": "Cara Diaz", "owner_id": 12, "abc123": null, "phone": "555-0199"}
]`

func decodeFixtures(t *testing.T) ([]PersonField, []Person) {
	t.Helper()
	var fields []PersonField
	require.NoError(t, json.Unmarshal([]byte(personFieldsJSON), &fields))
	var persons []Person
	require.NoError(t, json.Unmarshal([]byte(personsJSON), &persons))
	return fields, persons
}

func TestFindSourceField(t *testing.T) {
	fields, _ := decodeFixtures(t)

	sf := FindSourceField(fields)
	require.NotNil(t, sf)
	assert.Equal(t, "abc123", sf.Key)
	assert.Equal(t, map[string]string{"7": "Referral", "8": "Seminar"}, sf.Options)

	assert.Nil(t, FindSourceField([]PersonField{{Key: "x", Name: "Source"}}), "fields without a type are ignored")
}

func TestMapPersons(t *testing.T) {
	fields, persons := decodeFixtures(t)
	brokers := []string{"Amy", "Ben"}

	clients, names := MapPersons(persons, FindSourceField(fields), brokers)
	require.Len(t, clients, 3)

	amy := clients[0]
	assert.Equal(t, "pd_1", amy.ID)
	assert.Equal(t, "555-0100", amy.Phone)
	assert.Equal(t, "amy@example.com", amy.Email)
	assert.Equal(t, "Referral", amy.ContactSource)
	assert.Equal(t, "Amy", amy.AssignedBroker)
	assert.Equal(t, "pipedrive", amy.ImportedFrom)

	ben := clients[1]
	assert.Equal(t, "99", ben.ContactSource, "unmapped option falls back to the raw value")
	assert.Equal(t, "Unknown / Unassigned", ben.AssignedBroker)

	cara := clients[2]
	assert.Equal(t, "", cara.ContactSource)
	assert.Equal(t, "", cara.AssignedBroker)
	assert.Equal(t, "555-0199", cara.Phone)

	assert.Equal(t, "Amy Chen", names["1"])
	assert.Equal(t, "", names["3"])
	assert.Len(t, names, 4)
}

func TestMapPersonsWithoutSourceField(t *testing.T) {
	_, persons := decodeFixtures(t)

	clients, _ := MapPersons(persons, nil, nil)
	for _, c := range clients {
		assert.Empty(t, c.ContactSource)
	}
}

func TestStartHour(t *testing.T) {
	hours := schedule.DefaultHours()

	tests := []struct {
		due  string
		want float64
		ok   bool
	}{
		{"", 9, true},
		{"10:00", 10, true},
		{"10:30", 10.5, true},
		{"10:15", 10.5, true},
		{"10:45", 11, true},
		{"07:00", 9, true},
		{"08:45", 9, true},
		{"16:30", 16.5, true},
		{"16:45", 0, false},
		{"17:00", 0, false},
		{"22:00:00", 0, false},
		{"noon", 0, false},
	}

	for _, tt := range tests {
		got, ok := StartHour(tt.due, hours)
		assert.Equal(t, tt.ok, ok, tt.due)
		assert.Equal(t, tt.want, got, tt.due)
	}
}

func TestBucketDuration(t *testing.T) {
	tests := map[string]float64{
		"":      1,
		"00:30": 1,
		"01:00": 1,
		"01:15": 1.5,
		"01:30": 1.5,
		"01:45": 2,
		"03:00": 2,
		"bogus": 1,
	}

	for in, want := range tests {
		assert.Equal(t, want, BucketDuration(in), in)
	}
}

func TestMapActivities(t *testing.T) {
	acts := []Activity{
		{ID: "1", DueDate: "2026-10-20", DueTime: "10:15", Duration: "01:30", PersonID: "1", OwnerName: "Ben Ortiz", Subject: "Annual review"},
		{ID: "2", DueDate: "2026-10-20", PersonID: "5", PersonName: "Walk In", Type: "call"},
		{ID: "3", DueDate: "", PersonID: "1"},
		{ID: "4", DueDate: "2026-10-20", PersonID: "0"},
		{ID: "5", DueDate: "2026-10-20", PersonID: "6"},
		{ID: "6", DueDate: "2026-10-21", DueTime: "17:30", PersonID: "1"},
	}
	names := map[string]string{"1": "Amy Chen"}

	appts := MapActivities(acts, names, []string{"Amy", "Ben"}, schedule.DefaultHours())
	require.Len(t, appts, 2)

	first := appts[0]
	assert.Equal(t, "pd_act_1", first.ID)
	assert.Equal(t, "Ben", first.Broker)
	assert.Equal(t, 10.5, first.StartHour)
	assert.Equal(t, 1.5, first.Duration)
	assert.Equal(t, "Amy Chen", first.ClientName)
	assert.Equal(t, "Annual review", first.Notes)
	assert.True(t, first.FromPipedrive)

	second := appts[1]
	assert.Equal(t, "Amy", second.Broker, "unmatched owner goes to the first broker")
	assert.Equal(t, 9.0, second.StartHour)
	assert.Equal(t, 1.0, second.Duration)
	assert.Equal(t, "Walk In", second.ClientName)
	assert.Equal(t, "call", second.Notes)
}

func TestFlexStringDecoding(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
		D flexString `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "x", "c": null, "d": {"value": 7, "name": "n"}}`), &v))
	assert.Equal(t, flexString("42"), v.A)
	assert.Equal(t, flexString("x"), v.B)
	assert.Equal(t, flexString(""), v.C)
	assert.Equal(t, flexString("7"), v.D)
}
