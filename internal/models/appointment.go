package models

import "time"

// Appointment is a single event attached to one member's day entry.
type Appointment struct {
	// ID is unique within the owning member's appointment list and stable
	// across edits (UUID format, generated at creation).
	ID string `json:"id" firestore:"id"`

	// Title is the display title. Never empty.
	Title string `json:"title" firestore:"title"`

	// Description is optional free-form text.
	Description string `json:"description,omitempty" firestore:"description,omitempty"`

	// AllDay marks an appointment without specific times. When true,
	// StartTime and EndTime are nil.
	AllDay bool `json:"allDay" firestore:"allDay"`

	// StartTime and EndTime bound the appointment within the owning day.
	StartTime *time.Time `json:"startTime,omitempty" firestore:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty" firestore:"endTime,omitempty"`

	// CreatedBy is the owner's user ID. Only the owner may edit or delete
	// the appointment.
	CreatedBy string    `json:"createdBy" firestore:"createdBy"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`

	// LastModified is set on every edit; zero until the first edit.
	LastModified time.Time `json:"lastModified,omitempty" firestore:"lastModified,omitempty"`
}

// AppointmentInput carries caller-supplied fields for a new appointment.
// ID, CreatedBy and CreatedAt are assigned by the service.
type AppointmentInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AllDay      bool       `json:"allDay"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
}

// AppointmentPatch is a partial update: nil fields are preserved on the
// existing appointment. Setting AllDay to true clears both times.
type AppointmentPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	AllDay      *bool      `json:"allDay,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
}

// Apply merges the patch onto a, returning the updated appointment.
// Identity fields (ID, CreatedBy, CreatedAt) are never touched.
func (p AppointmentPatch) Apply(a Appointment, now time.Time) Appointment {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.AllDay != nil {
		a.AllDay = *p.AllDay
	}
	if p.StartTime != nil {
		a.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = p.EndTime
	}
	if a.AllDay {
		a.StartTime = nil
		a.EndTime = nil
	}
	a.LastModified = now
	return a
}
