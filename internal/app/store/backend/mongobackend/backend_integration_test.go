package mongobackend_test

import (
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/store/backend/mongobackend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"go.uber.org/zap"
)

func TestBackend_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := mongobackend.New(db, zap.NewNop())
	if err := b.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	classID := "c1"
	rows := []models.Student{
		{ID: "s1", Name: "Budi", NameCI: "budi", ClassID: &classID},
		{ID: "s2", Name: "Ani", NameCI: "ani"},
	}
	if err := b.Insert(ctx, models.TableStudents, rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var got []models.Student
	q := backend.From(models.TableStudents).Where(backend.IsNull("class_id")).OrderBy("name_ci", false)
	if err := b.Find(ctx, q, &got); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s2" {
		t.Errorf("IsNull(class_id): got %+v, want [s2]", got)
	}

	if err := b.Update(ctx, models.TableStudents, "s2", map[string]any{"class_id": classID}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	n, err := b.Count(ctx, backend.From(models.TableStudents).Where(backend.Eq("class_id", classID)))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count after update: got %d, want 2", n)
	}

	if err := b.Update(ctx, models.TableStudents, "missing", map[string]any{"name": "x"}); !backend.IsNotFound(err) {
		t.Errorf("Update missing: got %v, want ErrNotFound", err)
	}

	deleted, err := b.Delete(ctx, models.TableStudents, "s1")
	if err != nil || deleted != 1 {
		t.Errorf("Delete: got (%d, %v), want (1, nil)", deleted, err)
	}
}

func TestBackend_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := mongobackend.New(db, zap.NewNop())
	if err := b.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := b.Insert(ctx, models.TableClasses, &models.Class{ID: "c1", Name: "X-A", NameCI: "x-a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := b.Insert(ctx, models.TableClasses, &models.Class{ID: "c2", Name: "x-a", NameCI: "x-a"})
	if !backend.IsDuplicate(err) {
		t.Errorf("duplicate class name: got %v, want ErrDuplicate", err)
	}
}
