package calendar

import (
	"testing"

	"github.com/mmynk/syncdays/internal/models"
)

func entriesDay(entries map[string]models.MemberEntry) *models.DayRecord {
	return &models.DayRecord{Entries: entries}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		day  *models.DayRecord
		want DayClass
	}{
		{
			name: "nil day is unknown",
			day:  nil,
			want: DayUnknown,
		},
		{
			name: "no entries is unknown",
			day:  entriesDay(map[string]models.MemberEntry{}),
			want: DayUnknown,
		},
		{
			name: "single busy member",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Status: models.StatusBusy},
			}),
			want: DayBusy,
		},
		{
			name: "all free",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Status: models.StatusFree},
				"b": {Status: models.StatusFree},
			}),
			want: DayFree,
		},
		{
			name: "disagreement is mixed",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Status: models.StatusFree},
				"b": {Status: models.StatusBusy},
			}),
			want: DayMixed,
		},
		{
			name: "explicit unknown does not vote",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Status: models.StatusFree},
				"b": {Status: models.StatusUnknown},
			}),
			want: DayFree,
		},
		{
			name: "only unknown statuses is unknown",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Status: models.StatusUnknown},
				"b": {Status: models.StatusUnknown},
			}),
			want: DayUnknown,
		},
		{
			name: "entry with appointments but no status is unknown",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Appointments: []models.Appointment{{ID: "x", Title: "Dentist"}}},
			}),
			want: DayUnknown,
		},
		{
			name: "three members two statuses",
			day: entriesDay(map[string]models.MemberEntry{
				"a": {Status: models.StatusBusy},
				"b": {Status: models.StatusBusy},
				"c": {Status: models.StatusFree},
			}),
			want: DayMixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.day); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPresentStatuses(t *testing.T) {
	day := entriesDay(map[string]models.MemberEntry{
		"u1": {Status: models.StatusFree},
		"u3": {}, // entry present, status never written
	})

	statuses := PresentStatuses(day, []string{"u1", "u2", "u3"})
	want := []models.Status{models.StatusFree, models.StatusUnknown}
	if len(statuses) != len(want) {
		t.Fatalf("PresentStatuses returned %d statuses, want %d", len(statuses), len(want))
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %v, want %v", i, statuses[i], want[i])
		}
	}
}
