package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

// dayKey joins group and date for NotFoundError messages.
func dayKey(groupID, dateKey string) string {
	return fmt.Sprintf("%s/%s", groupID, dateKey)
}

// GetDay retrieves one day record, assembled from the per-member entry
// rows.
func (s *SQLiteStore) GetDay(ctx context.Context, groupID, dateKey string) (*models.DayRecord, error) {
	var lastUpdated int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_updated FROM days WHERE group_id = ? AND date_key = ?",
		groupID, dateKey,
	).Scan(&lastUpdated)
	if err == sql.ErrNoRows {
		return nil, &storage.NotFoundError{Resource: "day", ID: dayKey(groupID, dateKey)}
	}
	if err != nil {
		return nil, wrap("get day", err)
	}

	day := &models.DayRecord{
		Entries:     make(map[string]models.MemberEntry),
		LastUpdated: time.Unix(0, lastUpdated).UTC(),
	}
	if err := s.loadEntries(ctx, groupID, dateKey, day); err != nil {
		return nil, err
	}
	return day, nil
}

// loadEntries fills day.Entries from the entry rows of one day.
func (s *SQLiteStore) loadEntries(ctx context.Context, groupID, dateKey string, day *models.DayRecord) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, status, appointments FROM day_entries WHERE group_id = ? AND date_key = ?",
		groupID, dateKey,
	)
	if err != nil {
		return wrap("load day entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID, status, appointmentsJSON string
		if err := rows.Scan(&memberID, &status, &appointmentsJSON); err != nil {
			return wrap("load day entries", err)
		}
		entry := models.MemberEntry{Status: models.Status(status)}
		if err := json.Unmarshal([]byte(appointmentsJSON), &entry.Appointments); err != nil {
			return wrap("load day entries", err)
		}
		day.Entries[memberID] = entry
	}
	return rows.Err()
}

// ListDays returns every day record of the group keyed by date.
func (s *SQLiteStore) ListDays(ctx context.Context, groupID string) (map[string]*models.DayRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date_key, last_updated FROM days WHERE group_id = ? ORDER BY last_updated DESC",
		groupID,
	)
	if err != nil {
		return nil, wrap("list days", err)
	}
	defer rows.Close()

	days := make(map[string]*models.DayRecord)
	for rows.Next() {
		var dateKey string
		var lastUpdated int64
		if err := rows.Scan(&dateKey, &lastUpdated); err != nil {
			return nil, wrap("list days", err)
		}
		days[dateKey] = &models.DayRecord{
			Entries:     make(map[string]models.MemberEntry),
			LastUpdated: time.Unix(0, lastUpdated).UTC(),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list days", err)
	}

	for dateKey, day := range days {
		if err := s.loadEntries(ctx, groupID, dateKey, day); err != nil {
			return nil, err
		}
	}
	return days, nil
}

// SetMemberStatus writes one member's status, creating the day and entry
// rows as needed. The member's appointment list and every other member's
// row are untouched.
func (s *SQLiteStore) SetMemberStatus(ctx context.Context, groupID, dateKey, userID string, status models.Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("set status", err)
	}
	defer tx.Rollback()

	if err := touchDay(ctx, tx, groupID, dateKey); err != nil {
		return s.dayWriteErr(ctx, "set status", groupID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO day_entries (group_id, date_key, member_id, status) VALUES (?, ?, ?, ?)
		 ON CONFLICT(group_id, date_key, member_id) DO UPDATE SET status = excluded.status`,
		groupID, dateKey, userID, string(status),
	)
	if err != nil {
		return s.dayWriteErr(ctx, "set status", groupID, err)
	}

	if err := tx.Commit(); err != nil {
		return s.dayWriteErr(ctx, "set status", groupID, err)
	}

	s.notifyDayWatches(groupID)
	return nil
}

// SetMemberAppointments replaces one member's appointment list, creating
// the day and entry rows as needed. The member's status is untouched.
func (s *SQLiteStore) SetMemberAppointments(ctx context.Context, groupID, dateKey, userID string, appointments []models.Appointment) error {
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	encoded, err := json.Marshal(appointments)
	if err != nil {
		return wrap("set appointments", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("set appointments", err)
	}
	defer tx.Rollback()

	if err := touchDay(ctx, tx, groupID, dateKey); err != nil {
		return s.dayWriteErr(ctx, "set appointments", groupID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO day_entries (group_id, date_key, member_id, appointments) VALUES (?, ?, ?, ?)
		 ON CONFLICT(group_id, date_key, member_id) DO UPDATE SET appointments = excluded.appointments`,
		groupID, dateKey, userID, string(encoded),
	)
	if err != nil {
		return s.dayWriteErr(ctx, "set appointments", groupID, err)
	}

	if err := tx.Commit(); err != nil {
		return s.dayWriteErr(ctx, "set appointments", groupID, err)
	}

	s.notifyDayWatches(groupID)
	return nil
}

// touchDay upserts the day row and advances its last_updated stamp.
func touchDay(ctx context.Context, tx *sql.Tx, groupID, dateKey string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO days (group_id, date_key, last_updated) VALUES (?, ?, ?)
		 ON CONFLICT(group_id, date_key) DO UPDATE SET last_updated = excluded.last_updated`,
		groupID, dateKey, time.Now().UTC().UnixNano(),
	)
	return err
}

// dayWriteErr maps a failed day write to NotFoundError when the group
// was deleted concurrently: the day rows carry a foreign key to groups,
// so the write fails instead of resurrecting deleted data.
func (s *SQLiteStore) dayWriteErr(ctx context.Context, op, groupID string, err error) error {
	var one int
	if scanErr := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM groups WHERE id = ?", groupID,
	).Scan(&one); scanErr == sql.ErrNoRows {
		return &storage.NotFoundError{Resource: "group", ID: groupID}
	}
	return wrap(op, err)
}

// DeleteGroupDays deletes every day record under the group. Idempotent.
func (s *SQLiteStore) DeleteGroupDays(ctx context.Context, groupID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("delete group days", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM day_entries WHERE group_id = ?", groupID); err != nil {
		return 0, wrap("delete group days", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM days WHERE group_id = ?", groupID)
	if err != nil {
		return 0, wrap("delete group days", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("delete group days", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("delete group days", err)
	}

	if n > 0 {
		s.notifyDayWatches(groupID)
	}
	return int(n), nil
}

// PurgeDaysBefore deletes day records dated strictly before cutoffKey
// across all groups. Date keys sort lexicographically in date order, so
// a plain string comparison suffices.
func (s *SQLiteStore) PurgeDaysBefore(ctx context.Context, cutoffKey string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("purge days", err)
	}
	defer tx.Rollback()

	// Collect affected groups before deleting so their watchers can be
	// refreshed afterwards.
	rows, err := tx.QueryContext(ctx, "SELECT DISTINCT group_id FROM days WHERE date_key < ?", cutoffKey)
	if err != nil {
		return 0, wrap("purge days", err)
	}
	var groupIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, wrap("purge days", err)
		}
		groupIDs = append(groupIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, wrap("purge days", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM day_entries WHERE date_key < ?", cutoffKey); err != nil {
		return 0, wrap("purge days", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM days WHERE date_key < ?", cutoffKey)
	if err != nil {
		return 0, wrap("purge days", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("purge days", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("purge days", err)
	}

	for _, id := range groupIDs {
		s.notifyDayWatches(id)
	}
	return int(n), nil
}
