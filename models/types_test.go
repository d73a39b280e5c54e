// ABOUTME: Tests for broker desk data models
// ABOUTME: Validates broker precedence, lanes and appointment interval helpers
package models

import (
	"testing"
)

func TestPreferredBrokersManualWins(t *testing.T) {
	c := &Client{Name: "Jane Doe", AssignedBroker: "Amy", ManualBrokers: []string{"Ben", "Staff"}}

	got := c.PreferredBrokers()
	if len(got) != 2 || got[0] != "Ben" {
		t.Errorf("expected manual brokers to win, got %v", got)
	}
	if c.DefaultBroker() != "Ben" {
		t.Errorf("expected default broker Ben, got %q", c.DefaultBroker())
	}
}

func TestPreferredBrokersFallsBackToAssigned(t *testing.T) {
	c := &Client{Name: "Jane Doe", AssignedBroker: "Amy"}
	if c.DefaultBroker() != "Amy" {
		t.Errorf("expected Amy, got %q", c.DefaultBroker())
	}

	empty := &Client{Name: "Nobody"}
	if empty.PreferredBrokers() != nil {
		t.Errorf("expected no brokers, got %v", empty.PreferredBrokers())
	}
	if empty.DefaultBroker() != "" {
		t.Errorf("expected empty default broker, got %q", empty.DefaultBroker())
	}
}

func TestSettingsLanes(t *testing.T) {
	s := &Settings{Brokers: []string{"Amy", "Ben"}}
	lanes := s.Lanes()
	want := []string{"Amy", "Ben", StaffLane}
	if len(lanes) != len(want) {
		t.Fatalf("expected %v, got %v", want, lanes)
	}
	for i := range want {
		if lanes[i] != want[i] {
			t.Errorf("lane %d: expected %q, got %q", i, want[i], lanes[i])
		}
	}
	if len(s.Brokers) != 2 {
		t.Errorf("Lanes must not modify the broker list, got %v", s.Brokers)
	}
}

func TestAppointmentCovers(t *testing.T) {
	a := &Appointment{StartHour: 10, Duration: 2}

	tests := []struct {
		hour float64
		want bool
	}{
		{9.5, false},
		{10, true},
		{11.5, true},
		{12, false},
	}
	for _, tt := range tests {
		if got := a.Covers(tt.hour); got != tt.want {
			t.Errorf("Covers(%v) = %v, want %v", tt.hour, got, tt.want)
		}
	}
	if a.EndHour() != 12 {
		t.Errorf("expected end hour 12, got %v", a.EndHour())
	}
}

func TestNameKey(t *testing.T) {
	if NameKey("John Smith") != NameKey("john smith") {
		t.Error("expected case-insensitive name keys to match")
	}
}
