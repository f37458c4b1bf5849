// Package calendar holds the pure aggregation functions that derive
// calendar views from day records. Everything here is deterministic and
// does no I/O.
package calendar

import (
	"sort"

	"github.com/mmynk/syncdays/internal/models"
)

// DayClass is the overall classification of a day across members.
type DayClass string

const (
	DayUnknown DayClass = "unknown"
	DayFree    DayClass = "free"
	DayBusy    DayClass = "busy"
	DayMixed   DayClass = "mixed"
)

// Classify reduces the present members' statuses for one day to a single
// classification. Only members who have written a status count: absent
// entries and explicit "unknown" statuses are excluded rather than
// treated as votes.
//
// Rules (unanimous variant): no present statuses yields DayUnknown; all
// present statuses equal yields that status; any disagreement yields
// DayMixed.
func Classify(day *models.DayRecord) DayClass {
	if day == nil {
		return DayUnknown
	}

	var first models.Status
	count := 0
	for _, entry := range day.Entries {
		status := entry.EffectiveStatus()
		if status == models.StatusUnknown {
			continue
		}
		if count == 0 {
			first = status
		} else if status != first {
			return DayMixed
		}
		count++
	}

	if count == 0 {
		return DayUnknown
	}
	switch first {
	case models.StatusFree:
		return DayFree
	case models.StatusBusy:
		return DayBusy
	}
	return DayUnknown
}

// PresentStatuses returns the statuses written by the given members for
// the day, in member order, skipping members without an entry.
func PresentStatuses(day *models.DayRecord, memberIDs []string) []models.Status {
	if day == nil {
		return nil
	}
	var statuses []models.Status
	for _, id := range memberIDs {
		entry, ok := day.Entries[id]
		if !ok {
			continue
		}
		statuses = append(statuses, entry.EffectiveStatus())
	}
	return statuses
}

// sortedMemberIDs returns the entry keys in lexicographic order so that
// flattened views are stable across map iterations.
func sortedMemberIDs(day *models.DayRecord) []string {
	ids := make([]string, 0, len(day.Entries))
	for id := range day.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
