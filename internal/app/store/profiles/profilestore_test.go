package profilestore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	profilestore "github.com/dalemusser/rekaphub/internal/app/store/profiles"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
)

func TestStore_CreateAndLookup(t *testing.T) {
	store := profilestore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, "Ustadz.Ahmad", models.RoleDormitoryAdmin, "hash")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.PasswordHash != "" {
		t.Error("Create should not return the password hash")
	}

	got, err := store.GetByUsername(ctx, "  ustadz.ahmad ")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.ID != p.ID || got.PasswordHash != "hash" {
		t.Errorf("GetByUsername: got %+v", got)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].PasswordHash != "" {
		t.Errorf("List should hide hashes: %+v", list)
	}

	if _, err := store.GetByUsername(ctx, "nobody"); !backend.IsNotFound(err) {
		t.Errorf("unknown username: got %v, want not found", err)
	}
}

func TestStore_CreateValidation(t *testing.T) {
	store := profilestore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "admin", "janitor", "h"); !errors.Is(err, profilestore.ErrInvalidRole) {
		t.Errorf("bad role: got %v", err)
	}
	if _, err := store.Create(ctx, " ", models.RoleSuperAdmin, "h"); !errors.Is(err, profilestore.ErrEmptyUsername) {
		t.Errorf("blank username: got %v", err)
	}
	if _, err := store.Create(ctx, "admin", models.RoleSuperAdmin, "h"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, "ADMIN", models.RoleAcademicAdmin, "h"); !errors.Is(err, profilestore.ErrDuplicateUsername) {
		t.Errorf("duplicate username: got %v", err)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	store := profilestore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, "a", models.RoleAcademicAdmin, "h")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, "b", models.RoleAcademicAdmin, "h"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, a.ID, "B", models.RoleAcademicAdmin); !errors.Is(err, profilestore.ErrDuplicateUsername) {
		t.Errorf("rename onto existing: got %v", err)
	}
	if err := store.Update(ctx, a.ID, "a2", models.RoleSuperAdmin); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, a.ID)
	if err != nil || got.Role != models.RoleSuperAdmin || got.Username != "a2" {
		t.Errorf("after update: got (%+v, %v)", got, err)
	}

	if err := store.SetPasswordHash(ctx, a.ID, "new"); err != nil {
		t.Fatalf("SetPasswordHash failed: %v", err)
	}
	got, _ = store.GetByUsername(ctx, "a2")
	if got.PasswordHash != "new" {
		t.Errorf("hash not updated: %q", got.PasswordHash)
	}

	if n, err := store.Delete(ctx, a.ID); err != nil || n != 1 {
		t.Errorf("Delete: got (%d, %v)", n, err)
	}
}
