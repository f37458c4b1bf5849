package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

func dayID(groupID, dateKey string) string {
	return fmt.Sprintf("%s/%s", groupID, dateKey)
}

// GetDay retrieves one day record.
func (s *FirestoreStore) GetDay(ctx context.Context, groupID, dateKey string) (*models.DayRecord, error) {
	snap, err := s.dayDoc(groupID, dateKey).Get(ctx)
	if err != nil {
		return nil, mapErr("get day", "day", dayID(groupID, dateKey), err)
	}
	return decodeDay(snap.Data())
}

// ListDays returns every day record of the group keyed by date,
// scanning the days subcollection.
func (s *FirestoreStore) ListDays(ctx context.Context, groupID string) (map[string]*models.DayRecord, error) {
	iter := s.groupDoc(groupID).Collection(daysCollection).
		OrderBy(lastUpdatedField, firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	days := make(map[string]*models.DayRecord)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &storage.UnavailableError{Op: "list days", Err: err}
		}
		day, err := decodeDay(snap.Data())
		if err != nil {
			return nil, err
		}
		days[snap.Ref.ID] = day
	}
	return days, nil
}

// SetMemberStatus writes status under the member's own field path. Set
// with MergeAll creates the document when absent and merges when
// present, leaving every other field path untouched.
func (s *FirestoreStore) SetMemberStatus(ctx context.Context, groupID, dateKey, userID string, status models.Status) error {
	_, err := s.dayDoc(groupID, dateKey).Set(ctx, map[string]interface{}{
		userID:           map[string]interface{}{"status": string(status)},
		lastUpdatedField: firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return mapErr("set status", "day", dayID(groupID, dateKey), err)
	}
	return nil
}

// SetMemberAppointments replaces the member's appointment array under
// their own field path.
func (s *FirestoreStore) SetMemberAppointments(ctx context.Context, groupID, dateKey, userID string, appointments []models.Appointment) error {
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	_, err := s.dayDoc(groupID, dateKey).Set(ctx, map[string]interface{}{
		userID:           map[string]interface{}{"appointments": appointments},
		lastUpdatedField: firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return mapErr("set appointments", "day", dayID(groupID, dateKey), err)
	}
	return nil
}

// DeleteGroupDays deletes every day document under the group, stopping
// at the first failure so the caller never deletes the group document on
// top of a partial sweep.
func (s *FirestoreStore) DeleteGroupDays(ctx context.Context, groupID string) (int, error) {
	iter := s.groupDoc(groupID).Collection(daysCollection).Documents(ctx)
	defer iter.Stop()

	deleted := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, &storage.UnavailableError{Op: "delete group days", Err: err}
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return deleted, &storage.UnavailableError{Op: "delete group days", Err: err}
		}
		deleted++
	}
	return deleted, nil
}

// PurgeDaysBefore deletes day documents dated before cutoffKey in every
// group. Day documents are keyed by date, so a document-ID range query
// selects them directly.
func (s *FirestoreStore) PurgeDaysBefore(ctx context.Context, cutoffKey string) (int, error) {
	groups := s.client.Collection(groupsCollection).Documents(ctx)
	defer groups.Stop()

	deleted := 0
	for {
		groupSnap, err := groups.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, &storage.UnavailableError{Op: "purge days", Err: err}
		}

		days := groupSnap.Ref.Collection(daysCollection).
			Where(firestore.DocumentID, "<", cutoffKey).
			Documents(ctx)
		for {
			snap, err := days.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				days.Stop()
				return deleted, &storage.UnavailableError{Op: "purge days", Err: err}
			}
			if _, err := snap.Ref.Delete(ctx); err != nil {
				days.Stop()
				return deleted, &storage.UnavailableError{Op: "purge days", Err: err}
			}
			deleted++
		}
		days.Stop()
	}
	return deleted, nil
}

// WatchDays streams the full day mapping of the group on every change,
// ordered by lastUpdated descending.
func (s *FirestoreStore) WatchDays(ctx context.Context, groupID string) (*storage.DayWatch, error) {
	query := s.groupDoc(groupID).Collection(daysCollection).
		OrderBy(lastUpdatedField, firestore.Desc)

	w := storage.NewDayWatch()
	watchCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-w.Done()
		cancel()
	}()

	go func() {
		defer cancel()
		snaps := query.Snapshots(watchCtx)
		defer snaps.Stop()
		for {
			qsnap, err := snaps.Next()
			if err != nil {
				w.Finish(ctxErr(watchCtx, err))
				return
			}
			days := make(map[string]*models.DayRecord)
			for {
				snap, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					w.Finish(ctxErr(watchCtx, err))
					return
				}
				day, err := decodeDay(snap.Data())
				if err != nil {
					w.Finish(err)
					return
				}
				days[snap.Ref.ID] = day
			}
			if !w.Send(days) {
				w.Finish(nil)
				return
			}
		}
	}()

	return w, nil
}

// decodeDay rebuilds a typed DayRecord from the raw document map: one
// top-level field per member plus the reserved lastUpdated field.
func decodeDay(data map[string]interface{}) (*models.DayRecord, error) {
	day := &models.DayRecord{Entries: make(map[string]models.MemberEntry)}
	for key, value := range data {
		if key == lastUpdatedField {
			if t, ok := value.(time.Time); ok {
				day.LastUpdated = t.UTC()
			}
			continue
		}
		raw, ok := value.(map[string]interface{})
		if !ok {
			// Unrecognized top-level field; skip rather than fail the
			// whole record.
			continue
		}
		entry, err := decodeEntry(raw)
		if err != nil {
			return nil, &storage.UnavailableError{Op: "decode day", Err: err}
		}
		day.Entries[key] = entry
	}
	return day, nil
}

func decodeEntry(raw map[string]interface{}) (models.MemberEntry, error) {
	entry := models.MemberEntry{}
	if status, ok := raw["status"].(string); ok {
		entry.Status = models.Status(status)
	}
	list, ok := raw["appointments"].([]interface{})
	if !ok {
		return entry, nil
	}
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return entry, fmt.Errorf("appointment %d is not a map", i)
		}
		entry.Appointments = append(entry.Appointments, decodeAppointment(m))
	}
	return entry, nil
}

func decodeAppointment(m map[string]interface{}) models.Appointment {
	appt := models.Appointment{
		ID:          str(m["id"]),
		Title:       str(m["title"]),
		Description: str(m["description"]),
		CreatedBy:   str(m["createdBy"]),
	}
	if allDay, ok := m["allDay"].(bool); ok {
		appt.AllDay = allDay
	}
	appt.StartTime = timePtr(m["startTime"])
	appt.EndTime = timePtr(m["endTime"])
	if t, ok := m["createdAt"].(time.Time); ok {
		appt.CreatedAt = t.UTC()
	}
	if t, ok := m["lastModified"].(time.Time); ok {
		appt.LastModified = t.UTC()
	}
	return appt
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func timePtr(v interface{}) *time.Time {
	if t, ok := v.(time.Time); ok {
		u := t.UTC()
		return &u
	}
	return nil
}
