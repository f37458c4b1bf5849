package calendar

import (
	"sort"

	"github.com/mmynk/syncdays/internal/models"
)

// CollectAppointments flattens every member's appointment list into one
// slice. Order is stable: members in lexicographic ID order, then each
// member's own list order. The result is not time-sorted; use
// SortByStart for that.
func CollectAppointments(day *models.DayRecord) []models.Appointment {
	if day == nil {
		return nil
	}
	var out []models.Appointment
	for _, id := range sortedMemberIDs(day) {
		out = append(out, day.Entries[id].Appointments...)
	}
	return out
}

// SortByStart orders appointments by start time, earliest first. All-day
// appointments (no start time) sort before timed ones; ties keep their
// existing relative order.
func SortByStart(appointments []models.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		a, b := appointments[i].StartTime, appointments[j].StartTime
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		}
		return a.Before(*b)
	})
}

// FindAppointment returns the index of the appointment with the given ID
// in the list, or -1 if no appointment matches.
func FindAppointment(appointments []models.Appointment, id string) int {
	for i := range appointments {
		if appointments[i].ID == id {
			return i
		}
	}
	return -1
}
