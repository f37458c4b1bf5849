package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mmynk/syncdays/internal/middleware"
	"github.com/mmynk/syncdays/internal/models"
)

var upgrader = websocket.Upgrader{
	// CORS is enforced at the HTTP layer; the socket carries no
	// credentials beyond the already-verified bearer token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWatchGroups streams the caller's group list. Every message is
// the full current set; clients replace their state on each one.
func (s *Server) handleWatchGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	watch, err := s.groups.Watch(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer watch.Unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	go discardReads(conn, watch.Unsubscribe)

	for groups := range watch.Updates() {
		if groups == nil {
			groups = []*models.Group{}
		}
		if err := conn.WriteJSON(groups); err != nil {
			return
		}
	}
	if err := watch.Err(); err != nil {
		slog.Error("Group watch ended", "user_id", userID, "error", err)
	}
}

// handleWatchDays streams the group's day records with the same
// full-replace semantics.
func (s *Server) handleWatchDays(w http.ResponseWriter, r *http.Request) {
	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	watch, err := s.days.Watch(r.Context(), group.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer watch.Unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	go discardReads(conn, watch.Unsubscribe)

	for days := range watch.Updates() {
		// Membership and name overrides can change while the stream is
		// open; rebuild views against the current group. A failed
		// refresh falls back to the last group seen.
		if fresh, err := s.groups.Get(r.Context(), group.ID); err == nil {
			group = fresh
		}
		views := make(map[string]dayView, len(days))
		for date, day := range days {
			views[date] = s.newDayView(date, day, group)
		}
		if err := conn.WriteJSON(views); err != nil {
			return
		}
	}
	if err := watch.Err(); err != nil {
		slog.Error("Day watch ended", "group_id", group.ID, "error", err)
	}
}

// discardReads drains the connection so close frames are processed,
// cancelling the watch when the client goes away.
func discardReads(conn *websocket.Conn, cancel func()) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
