package server

import (
	"net/http"

	"github.com/mmynk/syncdays/internal/calendar"
	"github.com/mmynk/syncdays/internal/middleware"
	"github.com/mmynk/syncdays/internal/models"
)

type setStatusRequest struct {
	Status models.Status `json:"status"`
}

// dayView is the aggregated response for one day: the raw record plus
// the derived classification, per-member rows, and the flattened
// appointment list sorted by start time.
type dayView struct {
	Date           string               `json:"date"`
	Classification calendar.DayClass    `json:"classification"`
	Rows           []calendar.Row       `json:"rows"`
	Appointments   []models.Appointment `json:"appointments"`
	Record         *models.DayRecord    `json:"record"`
}

func (s *Server) newDayView(date string, day *models.DayRecord, group *models.Group) dayView {
	appointments := calendar.CollectAppointments(day)
	calendar.SortByStart(appointments)
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return dayView{
		Date:           date,
		Classification: calendar.Classify(day),
		Rows:           calendar.GroupRows(day, group),
		Appointments:   appointments,
		Record:         day,
	}
}

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	days, err := s.days.Days(r.Context(), group.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make(map[string]dayView, len(days))
	for date, day := range days {
		views[date] = s.newDayView(date, day, group)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	date := r.PathValue("date")
	day, err := s.days.Get(r.Context(), group.ID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.newDayView(date, day, group))
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.days.SetStatus(r.Context(), group.ID, r.PathValue("date"), userID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddAppointment(w http.ResponseWriter, r *http.Request) {
	var input models.AppointmentInput
	if !decodeBody(w, r, &input) {
		return
	}

	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	appt, err := s.days.AddAppointment(r.Context(), group.ID, r.PathValue("date"), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) handleEditAppointment(w http.ResponseWriter, r *http.Request) {
	var patch models.AppointmentPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	appt, err := s.days.EditAppointment(r.Context(), group.ID, r.PathValue("date"), userID, r.PathValue("apptId"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.days.DeleteAppointment(r.Context(), group.ID, r.PathValue("date"), userID, r.PathValue("apptId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
