package calendar

import (
	"testing"

	"github.com/mmynk/syncdays/internal/models"
)

func TestGroupRows(t *testing.T) {
	group := &models.Group{
		ID:        "g1",
		Name:      "Trip",
		Members:   []string{"u1", "u2", "u3"},
		CreatedBy: "u1",
		MemberNames: map[string]string{
			"u2": "Sam",
		},
	}
	day := entriesDay(map[string]models.MemberEntry{
		"u1": {Status: models.StatusFree},
		"u2": {
			Status: models.StatusBusy,
			Appointments: []models.Appointment{
				{ID: "a1", Title: "Dentist", CreatedBy: "u2"},
				{ID: "a2", Title: "Gym", CreatedBy: "u2"},
			},
		},
	})

	rows := GroupRows(day, group)
	if len(rows) != 3 {
		t.Fatalf("GroupRows returned %d rows, want 3", len(rows))
	}

	tests := []struct {
		i         int
		label     string
		status    models.Status
		apptCount int
	}{
		{0, "Member 1", models.StatusFree, 0},
		{1, "Sam", models.StatusBusy, 2},
		{2, "Member 3", models.StatusUnknown, 0}, // never wrote to this day
	}
	for _, tt := range tests {
		row := rows[tt.i]
		if row.Label != tt.label {
			t.Errorf("row[%d].Label = %q, want %q", tt.i, row.Label, tt.label)
		}
		if row.Status != tt.status {
			t.Errorf("row[%d].Status = %v, want %v", tt.i, row.Status, tt.status)
		}
		if row.AppointmentCount != tt.apptCount {
			t.Errorf("row[%d].AppointmentCount = %d, want %d", tt.i, row.AppointmentCount, tt.apptCount)
		}
	}
}

func TestDateKeys(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		key := "2024-06-01"
		parsed, err := ParseDateKey(key)
		if err != nil {
			t.Fatalf("ParseDateKey failed: %v", err)
		}
		if got := DateKey(parsed); got != key {
			t.Errorf("DateKey(ParseDateKey(%q)) = %q", key, got)
		}
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		for _, key := range []string{"", "2024-6-1", "06/01/2024", "2024-13-01"} {
			if ValidDateKey(key) {
				t.Errorf("ValidDateKey(%q) = true, want false", key)
			}
		}
	})

	t.Run("month enumeration", func(t *testing.T) {
		keys := MonthKeys(2024, 2) // leap year
		if len(keys) != 29 {
			t.Fatalf("MonthKeys(2024, 2) returned %d days, want 29", len(keys))
		}
		if keys[0] != "2024-02-01" || keys[28] != "2024-02-29" {
			t.Errorf("unexpected boundary keys: first=%s last=%s", keys[0], keys[28])
		}
	})
}
