package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
	"github.com/mmynk/syncdays/internal/storage/sqlite"
)

// setupServices creates group and day services backed by a temp database.
func setupServices(t *testing.T) (*GroupService, *DayService) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewGroupService(store), NewDayService(store)
}

func TestCreateGroup(t *testing.T) {
	groups, _ := setupServices(t)
	ctx := context.Background()

	group, err := groups.Create(ctx, "Trip", "u1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if group.ID == "" {
		t.Error("expected group ID to be assigned")
	}
	if group.CreatedBy != "u1" {
		t.Errorf("CreatedBy = %q, want u1", group.CreatedBy)
	}
	if len(group.Members) != 1 || group.Members[0] != "u1" {
		t.Errorf("Members = %v, want [u1]", group.Members)
	}

	listed, err := groups.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != group.ID {
		t.Errorf("ListForUser = %v, want exactly the created group", listed)
	}
}

func TestCreateGroupEmptyName(t *testing.T) {
	groups, _ := setupServices(t)

	for _, name := range []string{"", "   "} {
		if _, err := groups.Create(context.Background(), name, "u1"); !IsValidation(err) {
			t.Errorf("Create(%q) error = %v, want ValidationError", name, err)
		}
	}
}

func TestJoinGroupIdempotent(t *testing.T) {
	groups, _ := setupServices(t)
	ctx := context.Background()

	group, err := groups.Create(ctx, "Trip", "u1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := groups.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := groups.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("second Join failed: %v", err)
	}

	got, err := groups.Get(ctx, group.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("Members = %v, want exactly [u1 u2]", got.Members)
	}
}

func TestJoinUnknownGroup(t *testing.T) {
	groups, _ := setupServices(t)

	err := groups.Join(context.Background(), "no-such-group", "u1")
	if !storage.IsNotFound(err) {
		t.Errorf("Join error = %v, want NotFoundError", err)
	}
}

func TestSetMemberName(t *testing.T) {
	groups, _ := setupServices(t)
	ctx := context.Background()

	group, err := groups.Create(ctx, "Trip", "u1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := groups.SetMemberName(ctx, group.ID, "u1", "Alice"); err != nil {
		t.Fatalf("SetMemberName failed: %v", err)
	}
	if err := groups.SetMemberName(ctx, group.ID, "u1", "Alicia"); err != nil {
		t.Fatalf("SetMemberName update failed: %v", err)
	}

	got, err := groups.Get(ctx, group.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DisplayName("u1") != "Alicia" {
		t.Errorf("DisplayName(u1) = %q, want Alicia", got.DisplayName("u1"))
	}

	if err := groups.SetMemberName(ctx, group.ID, "u1", ""); !IsValidation(err) {
		t.Errorf("empty name error = %v, want ValidationError", err)
	}
	long := strings.Repeat("x", MaxMemberNameLength+1)
	if err := groups.SetMemberName(ctx, group.ID, "u1", long); !IsValidation(err) {
		t.Errorf("long name error = %v, want ValidationError", err)
	}
}

func TestDeleteGroup(t *testing.T) {
	groups, days := setupServices(t)
	ctx := context.Background()

	group, err := groups.Create(ctx, "Trip", "u1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := groups.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := days.SetStatus(ctx, group.ID, "2024-06-01", "u1", models.StatusFree); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	t.Run("non-creator denied", func(t *testing.T) {
		err := groups.Delete(ctx, group.ID, "u2")
		if !IsAuthorization(err) {
			t.Fatalf("Delete error = %v, want AuthorizationError", err)
		}

		// Group and its days must be untouched.
		if _, err := groups.Get(ctx, group.ID); err != nil {
			t.Errorf("group missing after denied delete: %v", err)
		}
		stored, err := days.Days(ctx, group.ID)
		if err != nil {
			t.Fatalf("Days failed: %v", err)
		}
		if len(stored) != 1 {
			t.Errorf("days = %d after denied delete, want 1", len(stored))
		}
	})

	t.Run("creator deletes with days", func(t *testing.T) {
		if err := groups.Delete(ctx, group.ID, "u1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := groups.Get(ctx, group.ID); !storage.IsNotFound(err) {
			t.Errorf("Get after delete error = %v, want NotFoundError", err)
		}
		stored, err := days.Days(ctx, group.ID)
		if err != nil {
			t.Fatalf("Days failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("days = %d after delete, want 0", len(stored))
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		if err := groups.Delete(ctx, group.ID, "u1"); !storage.IsNotFound(err) {
			t.Errorf("Delete error = %v, want NotFoundError", err)
		}
	})
}
