package models

import (
	"fmt"
	"time"
)

// Status is a member's availability for one day.
type Status string

const (
	StatusFree    Status = "free"
	StatusBusy    Status = "busy"
	StatusUnknown Status = "unknown"
)

// Valid reports whether s is one of the three recognised statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusFree, StatusBusy, StatusUnknown:
		return true
	}
	return false
}

// MemberEntry is one member's slice of a day: their status and the
// appointments they created. A nil or absent entry means StatusUnknown
// and no appointments.
type MemberEntry struct {
	Status       Status        `json:"status,omitempty" firestore:"status,omitempty"`
	Appointments []Appointment `json:"appointments,omitempty" firestore:"appointments,omitempty"`
}

// EffectiveStatus resolves an unset status to StatusUnknown.
func (e MemberEntry) EffectiveStatus() Status {
	if e.Status == "" {
		return StatusUnknown
	}
	return e.Status
}

// DayRecord aggregates every member's entry for one (group, date) pair.
// Each member owns exclusively their own entry; LastUpdated is a reserved
// server-side field recording the most recent write to the record and is
// not part of any member's data.
type DayRecord struct {
	Entries     map[string]MemberEntry `json:"entries"`
	LastUpdated time.Time              `json:"lastUpdated"`
}

// Entry returns the entry for userID. The zero MemberEntry stands in for
// members who have never written to this day.
func (d *DayRecord) Entry(userID string) MemberEntry {
	if d == nil {
		return MemberEntry{}
	}
	return d.Entries[userID]
}

// PositionalLabel is the fallback display label for the member at the
// given join-order index.
func PositionalLabel(index int) string {
	return fmt.Sprintf("Member %d", index+1)
}
