package studentstore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
)

func strp(s string) *string { return &s }

func TestStore_CreateAndGet(t *testing.T) {
	store := studentstore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Student{Name: "Ánísa Putri", ClassID: strp("c1"), DormitoryID: strp("")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != text.Fold("Ánísa Putri") {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, text.Fold("Ánísa Putri"))
	}
	if created.DormitoryID != nil {
		t.Errorf("empty dormitory id should be stored as nil, got %q", *created.DormitoryID)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Ánísa Putri" || got.ClassID == nil || *got.ClassID != "c1" {
		t.Errorf("GetByID: got %+v", got)
	}

	if _, err := store.GetByID(ctx, "missing"); !backend.IsNotFound(err) {
		t.Errorf("GetByID missing: got %v, want not found", err)
	}
}

func TestStore_Create_EmptyName(t *testing.T) {
	store := studentstore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Student{Name: "   "}); !errors.Is(err, studentstore.ErrEmptyName) {
		t.Errorf("got %v, want ErrEmptyName", err)
	}
}

func TestStore_CreateMany_AllOrNothing(t *testing.T) {
	b := testutil.NewMemoryBackend()
	store := studentstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.CreateMany(ctx, []models.Student{{Name: "A"}, {Name: ""}, {Name: "C"}})
	if !errors.Is(err, studentstore.ErrEmptyName) {
		t.Fatalf("got %v, want ErrEmptyName", err)
	}
	if n := b.Len(models.TableStudents); n != 0 {
		t.Errorf("rows written after rejected batch: %d", n)
	}

	rows, err := store.CreateMany(ctx, []models.Student{{Name: "A"}, {Name: "B"}})
	if err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID == rows[1].ID {
		t.Errorf("CreateMany: got %+v", rows)
	}
}

func TestStore_ListFilters(t *testing.T) {
	store := studentstore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate := func(st models.Student) models.Student {
		t.Helper()
		out, err := store.Create(ctx, st)
		if err != nil {
			t.Fatalf("Create %s: %v", st.Name, err)
		}
		return out
	}
	mustCreate(models.Student{Name: "Zaki", ClassID: strp("c1")})
	mustCreate(models.Student{Name: "budi", ClassID: strp("c1"), DormitoryID: strp("d1")})
	mustCreate(models.Student{Name: "Citra", DormitoryID: strp("d2")})
	mustCreate(models.Student{Name: "Dewi"})

	tests := []struct {
		name string
		f    studentstore.ListFilter
		want []string
	}{
		{"all sorted by folded name", studentstore.ListFilter{}, []string{"budi", "Citra", "Dewi", "Zaki"}},
		{"class", studentstore.ListFilter{ClassID: "c1"}, []string{"budi", "Zaki"}},
		{"dormitory", studentstore.ListFilter{DormitoryID: "d2"}, []string{"Citra"}},
		{"dormitory affiliated", studentstore.ListFilter{Affiliation: studentstore.AffiliationDormitory}, []string{"budi", "Citra"}},
		{"class affiliated", studentstore.ListFilter{Affiliation: studentstore.AffiliationClass}, []string{"budi", "Zaki"}},
		{"empty id set", studentstore.ListFilter{IDs: []string{}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.List(ctx, tt.f)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var got []string
			for _, r := range rows {
				got = append(got, r.Name)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d]: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	n, err := store.Count(ctx, studentstore.ListFilter{Affiliation: studentstore.AffiliationDormitory})
	if err != nil || n != 2 {
		t.Errorf("Count dormitory affiliated: got (%d, %v), want (2, nil)", n, err)
	}
}

func TestStore_UpdateClearsReference(t *testing.T) {
	store := studentstore.New(testutil.NewMemoryBackend())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st, err := store.Create(ctx, models.Student{Name: "Eka", ClassID: strp("c1")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Update(ctx, st.ID, models.Student{Name: "Eka P", DormitoryID: strp("d1")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ClassID != nil {
		t.Errorf("ClassID should be cleared, got %q", *got.ClassID)
	}
	if got.DormitoryID == nil || *got.DormitoryID != "d1" {
		t.Errorf("DormitoryID: got %v, want d1", got.DormitoryID)
	}
	if got.NameCI != text.Fold("Eka P") {
		t.Errorf("NameCI: got %q", got.NameCI)
	}

	if err := store.Update(ctx, "missing", models.Student{Name: "x"}); !backend.IsNotFound(err) {
		t.Errorf("Update missing: got %v, want not found", err)
	}

	n, err := store.Delete(ctx, st.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete: got (%d, %v), want (1, nil)", n, err)
	}
}
