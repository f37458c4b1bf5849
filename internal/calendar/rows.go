package calendar

import "github.com/mmynk/syncdays/internal/models"

// Row is one member's line in the per-day group status view.
type Row struct {
	MemberID         string        `json:"memberId"`
	Label            string        `json:"label"`
	Status           models.Status `json:"status"`
	AppointmentCount int           `json:"appointmentCount"`
}

// MemberRow builds the display row for one member of a day. index is the
// member's join-order position, used for the positional fallback label
// when no display-name override is set.
func MemberRow(day *models.DayRecord, memberID string, index int, override string) Row {
	label := override
	if label == "" {
		label = models.PositionalLabel(index)
	}
	entry := day.Entry(memberID)
	return Row{
		MemberID:         memberID,
		Label:            label,
		Status:           entry.EffectiveStatus(),
		AppointmentCount: len(entry.Appointments),
	}
}

// GroupRows builds display rows for every member of the group, in join
// order, resolving display-name overrides from the group.
func GroupRows(day *models.DayRecord, group *models.Group) []Row {
	rows := make([]Row, len(group.Members))
	for i, id := range group.Members {
		rows[i] = MemberRow(day, id, i, group.MemberNames[id])
	}
	return rows
}
