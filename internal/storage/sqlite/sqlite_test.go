package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "syncdays-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and seeds creator", func(t *testing.T) {
		group := &models.Group{Name: "Trip", CreatedBy: "u1"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Trip" || got.CreatedBy != "u1" {
			t.Errorf("GetGroup = %+v, want Name=Trip CreatedBy=u1", got)
		}
		if len(got.Members) != 1 || got.Members[0] != "u1" {
			t.Errorf("Members = %v, want [u1]", got.Members)
		}
	})

	t.Run("GetGroup returns NotFoundError for unknown id", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent")
		if !storage.IsNotFound(err) {
			t.Errorf("GetGroup error = %v, want NotFoundError", err)
		}
	})

	t.Run("AddMember is idempotent and preserves join order", func(t *testing.T) {
		group := &models.Group{Name: "Band", CreatedBy: "u1"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		for _, userID := range []string{"u2", "u3", "u2"} {
			if err := store.AddMember(ctx, group.ID, userID); err != nil {
				t.Fatalf("AddMember(%s) failed: %v", userID, err)
			}
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		want := []string{"u1", "u2", "u3"}
		if len(got.Members) != len(want) {
			t.Fatalf("Members = %v, want %v", got.Members, want)
		}
		for i := range want {
			if got.Members[i] != want[i] {
				t.Errorf("Members[%d] = %s, want %s", i, got.Members[i], want[i])
			}
		}
	})

	t.Run("AddMember to unknown group fails", func(t *testing.T) {
		if err := store.AddMember(ctx, "nonexistent", "u1"); !storage.IsNotFound(err) {
			t.Errorf("AddMember error = %v, want NotFoundError", err)
		}
	})

	t.Run("SetMemberName upserts", func(t *testing.T) {
		group := &models.Group{Name: "Climbing", CreatedBy: "u1"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if err := store.SetMemberName(ctx, group.ID, "u1", "Ana"); err != nil {
			t.Fatalf("SetMemberName failed: %v", err)
		}
		if err := store.SetMemberName(ctx, group.ID, "u1", "Anna"); err != nil {
			t.Fatalf("SetMemberName (update) failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.MemberNames["u1"] != "Anna" {
			t.Errorf("MemberNames[u1] = %q, want Anna", got.MemberNames["u1"])
		}
	})

	t.Run("ListGroupsByMember filters by membership", func(t *testing.T) {
		a := &models.Group{Name: "A", CreatedBy: "lister"}
		b := &models.Group{Name: "B", CreatedBy: "someone-else"}
		if err := store.CreateGroup(ctx, a); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := store.CreateGroup(ctx, b); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		groups, err := store.ListGroupsByMember(ctx, "lister")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != a.ID {
			t.Errorf("ListGroupsByMember = %v groups, want exactly group A", len(groups))
		}
	})
}

func TestSQLiteStoreDays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Days", CreatedBy: "u1"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	const date = "2024-06-01"

	t.Run("SetMemberStatus creates day record if absent", func(t *testing.T) {
		if err := store.SetMemberStatus(ctx, group.ID, date, "u1", models.StatusFree); err != nil {
			t.Fatalf("SetMemberStatus failed: %v", err)
		}

		day, err := store.GetDay(ctx, group.ID, date)
		if err != nil {
			t.Fatalf("GetDay failed: %v", err)
		}
		if got := day.Entry("u1").EffectiveStatus(); got != models.StatusFree {
			t.Errorf("status = %v, want free", got)
		}
		if day.LastUpdated.IsZero() {
			t.Error("Expected LastUpdated to be set")
		}
	})

	t.Run("SetMemberStatus merges without touching other members", func(t *testing.T) {
		if err := store.SetMemberStatus(ctx, group.ID, date, "u2", models.StatusBusy); err != nil {
			t.Fatalf("SetMemberStatus failed: %v", err)
		}

		day, err := store.GetDay(ctx, group.ID, date)
		if err != nil {
			t.Fatalf("GetDay failed: %v", err)
		}
		if got := day.Entry("u1").EffectiveStatus(); got != models.StatusFree {
			t.Errorf("u1 status clobbered: got %v, want free", got)
		}
		if got := day.Entry("u2").EffectiveStatus(); got != models.StatusBusy {
			t.Errorf("u2 status = %v, want busy", got)
		}
	})

	t.Run("SetMemberAppointments preserves status", func(t *testing.T) {
		start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		appts := []models.Appointment{{
			ID:        "a1",
			Title:     "Dentist",
			StartTime: &start,
			CreatedBy: "u1",
			CreatedAt: time.Now().UTC(),
		}}
		if err := store.SetMemberAppointments(ctx, group.ID, date, "u1", appts); err != nil {
			t.Fatalf("SetMemberAppointments failed: %v", err)
		}

		day, err := store.GetDay(ctx, group.ID, date)
		if err != nil {
			t.Fatalf("GetDay failed: %v", err)
		}
		entry := day.Entry("u1")
		if entry.EffectiveStatus() != models.StatusFree {
			t.Errorf("status lost on appointment write: got %v", entry.EffectiveStatus())
		}
		if len(entry.Appointments) != 1 || entry.Appointments[0].Title != "Dentist" {
			t.Fatalf("appointments = %+v, want one Dentist entry", entry.Appointments)
		}
		if entry.Appointments[0].StartTime == nil || !entry.Appointments[0].StartTime.Equal(start) {
			t.Errorf("StartTime not round-tripped: %v", entry.Appointments[0].StartTime)
		}
	})

	t.Run("GetDay returns NotFoundError for untouched date", func(t *testing.T) {
		_, err := store.GetDay(ctx, group.ID, "2030-01-01")
		if !storage.IsNotFound(err) {
			t.Errorf("GetDay error = %v, want NotFoundError", err)
		}
	})

	t.Run("ListDays returns all records", func(t *testing.T) {
		if err := store.SetMemberStatus(ctx, group.ID, "2024-06-02", "u1", models.StatusBusy); err != nil {
			t.Fatalf("SetMemberStatus failed: %v", err)
		}

		days, err := store.ListDays(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListDays failed: %v", err)
		}
		if len(days) != 2 {
			t.Errorf("ListDays returned %d records, want 2", len(days))
		}
		if _, ok := days[date]; !ok {
			t.Errorf("ListDays missing %s", date)
		}
	})

	t.Run("DeleteGroupDays removes everything and is idempotent", func(t *testing.T) {
		n, err := store.DeleteGroupDays(ctx, group.ID)
		if err != nil {
			t.Fatalf("DeleteGroupDays failed: %v", err)
		}
		if n != 2 {
			t.Errorf("DeleteGroupDays removed %d, want 2", n)
		}

		n, err = store.DeleteGroupDays(ctx, group.ID)
		if err != nil {
			t.Fatalf("second DeleteGroupDays failed: %v", err)
		}
		if n != 0 {
			t.Errorf("second DeleteGroupDays removed %d, want 0", n)
		}
	})

	t.Run("PurgeDaysBefore respects the cutoff", func(t *testing.T) {
		for _, d := range []string{"2024-01-15", "2024-02-15", "2024-03-15"} {
			if err := store.SetMemberStatus(ctx, group.ID, d, "u1", models.StatusFree); err != nil {
				t.Fatalf("SetMemberStatus failed: %v", err)
			}
		}

		n, err := store.PurgeDaysBefore(ctx, "2024-03-01")
		if err != nil {
			t.Fatalf("PurgeDaysBefore failed: %v", err)
		}
		if n != 2 {
			t.Errorf("PurgeDaysBefore removed %d, want 2", n)
		}

		days, err := store.ListDays(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListDays failed: %v", err)
		}
		if len(days) != 1 {
			t.Fatalf("ListDays returned %d records after purge, want 1", len(days))
		}
		if _, ok := days["2024-03-15"]; !ok {
			t.Error("purge removed a day at or after the cutoff")
		}
	})
}

func TestSQLiteStoreWatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	recv := func(t *testing.T, ch <-chan map[string]*models.DayRecord) map[string]*models.DayRecord {
		t.Helper()
		select {
		case snap := <-ch:
			return snap
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for day snapshot")
			return nil
		}
	}

	group := &models.Group{Name: "Watched", CreatedBy: "u1"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("WatchDays delivers initial and updated snapshots", func(t *testing.T) {
		watch, err := store.WatchDays(ctx, group.ID)
		if err != nil {
			t.Fatalf("WatchDays failed: %v", err)
		}
		defer watch.Unsubscribe()

		initial := recv(t, watch.Updates())
		if len(initial) != 0 {
			t.Errorf("initial snapshot has %d days, want 0", len(initial))
		}

		if err := store.SetMemberStatus(ctx, group.ID, "2024-06-01", "u1", models.StatusBusy); err != nil {
			t.Fatalf("SetMemberStatus failed: %v", err)
		}

		snap := recv(t, watch.Updates())
		day, ok := snap["2024-06-01"]
		if !ok {
			t.Fatalf("snapshot missing updated day: %v", snap)
		}
		if got := day.Entry("u1").EffectiveStatus(); got != models.StatusBusy {
			t.Errorf("snapshot status = %v, want busy", got)
		}
	})

	t.Run("Unsubscribe closes the channel", func(t *testing.T) {
		watch, err := store.WatchDays(ctx, group.ID)
		if err != nil {
			t.Fatalf("WatchDays failed: %v", err)
		}
		watch.Unsubscribe()

		deadline := time.After(2 * time.Second)
		for {
			select {
			case _, ok := <-watch.Updates():
				if !ok {
					if watch.Err() != nil {
						t.Errorf("Err = %v, want nil after clean unsubscribe", watch.Err())
					}
					return
				}
			case <-deadline:
				t.Fatal("channel never closed after Unsubscribe")
			}
		}
	})

	t.Run("WatchGroups tracks membership changes", func(t *testing.T) {
		watch, err := store.WatchGroups(ctx, "newcomer")
		if err != nil {
			t.Fatalf("WatchGroups failed: %v", err)
		}
		defer watch.Unsubscribe()

		select {
		case initial := <-watch.Updates():
			if len(initial) != 0 {
				t.Errorf("initial snapshot has %d groups, want 0", len(initial))
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for initial group snapshot")
		}

		if err := store.AddMember(ctx, group.ID, "newcomer"); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		select {
		case snap := <-watch.Updates():
			if len(snap) != 1 || snap[0].ID != group.ID {
				t.Errorf("snapshot = %d groups, want the joined group", len(snap))
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for membership snapshot")
		}
	})
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Email: "ana@example.com", DisplayName: "Ana", PasswordHash: "x"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected user ID to be generated")
	}

	byEmail, err := store.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Ana" {
		t.Errorf("GetUserByEmail = %+v, want the created user", byEmail)
	}

	if _, err := store.GetUserByID(ctx, "missing"); !storage.IsNotFound(err) {
		t.Errorf("GetUserByID error = %v, want NotFoundError", err)
	}

	// Duplicate emails violate the unique constraint.
	dup := &models.User{Email: "ana@example.com", DisplayName: "Other", PasswordHash: "y"}
	if err := store.CreateUser(ctx, dup); err == nil {
		t.Error("Expected error creating user with duplicate email")
	}
}

func TestSQLiteStoreDayWriteAfterGroupDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "u1"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	t.Run("SetMemberStatus", func(t *testing.T) {
		err := store.SetMemberStatus(ctx, group.ID, "2024-06-01", "u1", models.StatusFree)
		if !storage.IsNotFound(err) {
			t.Errorf("error = %v, want NotFoundError for deleted group", err)
		}
	})

	t.Run("SetMemberAppointments", func(t *testing.T) {
		err := store.SetMemberAppointments(ctx, group.ID, "2024-06-01", "u1", nil)
		if !storage.IsNotFound(err) {
			t.Errorf("error = %v, want NotFoundError for deleted group", err)
		}
	})
}
