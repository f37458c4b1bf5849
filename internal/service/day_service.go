package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncdays/internal/calendar"
	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

// DayService implements the availability ledger: per-member statuses
// and appointments on group days.
type DayService struct {
	store storage.Store
}

// NewDayService creates a new DayService with the given storage backend.
func NewDayService(store storage.Store) *DayService {
	return &DayService{store: store}
}

// SetStatus writes the member's availability status on one day,
// creating the day record and member entry as needed. The member's
// appointments are untouched.
func (s *DayService) SetStatus(ctx context.Context, groupID, dateKey, userID string, status models.Status) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Reason: "must be one of free, busy, unknown"}
	}
	if !calendar.ValidDateKey(dateKey) {
		return &ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
	}

	if err := s.store.SetMemberStatus(ctx, groupID, dateKey, userID, status); err != nil {
		slog.Error("Set status failed", "group_id", groupID, "date", dateKey, "user_id", userID, "error", err)
		return err
	}

	slog.Info("Status set", "group_id", groupID, "date", dateKey, "user_id", userID, "status", status)
	return nil
}

// Get returns the day record for one date. A day nobody has written
// yet comes back as an empty record rather than an error.
func (s *DayService) Get(ctx context.Context, groupID, dateKey string) (*models.DayRecord, error) {
	if !calendar.ValidDateKey(dateKey) {
		return nil, &ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
	}

	day, err := s.store.GetDay(ctx, groupID, dateKey)
	if storage.IsNotFound(err) {
		return &models.DayRecord{Entries: map[string]models.MemberEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return day, nil
}

// Days returns every day record stored for the group, keyed by date.
func (s *DayService) Days(ctx context.Context, groupID string) (map[string]*models.DayRecord, error) {
	days, err := s.store.ListDays(ctx, groupID)
	if err != nil {
		slog.Error("List days failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return days, nil
}

// AddAppointment appends a new appointment to the member's list on one
// day. The read-modify-write is not transactional across processes;
// concurrent appends to the same member's list may lose one write.
func (s *DayService) AddAppointment(ctx context.Context, groupID, dateKey, userID string, input models.AppointmentInput) (*models.Appointment, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !calendar.ValidDateKey(dateKey) {
		return nil, &ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
	}

	now := time.Now().UTC()
	appt := models.Appointment{
		ID:           uuid.New().String(),
		Title:        input.Title,
		Description:  input.Description,
		AllDay:       input.AllDay,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		CreatedBy:    userID,
		CreatedAt:    now,
		LastModified: now,
	}
	if appt.AllDay {
		appt.StartTime = nil
		appt.EndTime = nil
	}

	appointments, err := s.memberAppointments(ctx, groupID, dateKey, userID)
	if err != nil {
		return nil, err
	}
	appointments = append(appointments, appt)

	if err := s.store.SetMemberAppointments(ctx, groupID, dateKey, userID, appointments); err != nil {
		slog.Error("Add appointment failed", "group_id", groupID, "date", dateKey, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Appointment added", "group_id", groupID, "date", dateKey, "user_id", userID, "appointment_id", appt.ID)
	return &appt, nil
}

// EditAppointment applies a partial update to one appointment. Only
// the member who created the appointment may edit it.
func (s *DayService) EditAppointment(ctx context.Context, groupID, dateKey, userID, appointmentID string, patch models.AppointmentPatch) (*models.Appointment, error) {
	appointments, idx, err := s.findAppointment(ctx, groupID, dateKey, userID, appointmentID)
	if err != nil {
		return nil, err
	}

	appt := appointments[idx]
	if appt.CreatedBy != userID {
		return nil, &AuthorizationError{Reason: "only the appointment creator can edit it"}
	}

	appt = patch.Apply(appt, time.Now().UTC())
	if strings.TrimSpace(appt.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	appointments[idx] = appt

	if err := s.store.SetMemberAppointments(ctx, groupID, dateKey, userID, appointments); err != nil {
		slog.Error("Edit appointment failed", "group_id", groupID, "appointment_id", appointmentID, "error", err)
		return nil, err
	}

	slog.Info("Appointment edited", "group_id", groupID, "date", dateKey, "appointment_id", appointmentID)
	return &appt, nil
}

// DeleteAppointment removes one appointment from the member's list.
// Deleting an ID that is not present is a NotFoundError. Only the
// member who created the appointment may delete it.
func (s *DayService) DeleteAppointment(ctx context.Context, groupID, dateKey, userID, appointmentID string) error {
	appointments, idx, err := s.findAppointment(ctx, groupID, dateKey, userID, appointmentID)
	if err != nil {
		return err
	}
	if appointments[idx].CreatedBy != userID {
		return &AuthorizationError{Reason: "only the appointment creator can delete it"}
	}

	appointments = append(appointments[:idx], appointments[idx+1:]...)

	if err := s.store.SetMemberAppointments(ctx, groupID, dateKey, userID, appointments); err != nil {
		slog.Error("Delete appointment failed", "group_id", groupID, "appointment_id", appointmentID, "error", err)
		return err
	}

	slog.Info("Appointment deleted", "group_id", groupID, "date", dateKey, "appointment_id", appointmentID)
	return nil
}

// Watch subscribes to the group's day records. Every delivery on the
// returned handle is the full current set.
func (s *DayService) Watch(ctx context.Context, groupID string) (*storage.DayWatch, error) {
	return s.store.WatchDays(ctx, groupID)
}

// PurgeBefore deletes every day record older than the cutoff across
// all groups and returns the number of days removed.
func (s *DayService) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	cutoffKey := calendar.DateKey(cutoff)
	purged, err := s.store.PurgeDaysBefore(ctx, cutoffKey)
	if err != nil {
		slog.Error("Purge failed", "cutoff", cutoffKey, "error", err)
		return purged, err
	}
	if purged > 0 {
		slog.Info("Old days purged", "cutoff", cutoffKey, "count", purged)
	}
	return purged, nil
}

func (s *DayService) memberAppointments(ctx context.Context, groupID, dateKey, userID string) ([]models.Appointment, error) {
	day, err := s.store.GetDay(ctx, groupID, dateKey)
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return day.Entry(userID).Appointments, nil
}

func (s *DayService) findAppointment(ctx context.Context, groupID, dateKey, userID, appointmentID string) ([]models.Appointment, int, error) {
	day, err := s.store.GetDay(ctx, groupID, dateKey)
	if err != nil {
		return nil, -1, err
	}
	appointments := day.Entry(userID).Appointments
	idx := calendar.FindAppointment(appointments, appointmentID)
	if idx < 0 {
		return nil, -1, &storage.NotFoundError{Resource: "appointment", ID: appointmentID}
	}
	return appointments, idx, nil
}
