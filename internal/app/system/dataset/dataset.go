// Package dataset fetches everything a recap needs in one concurrent fan-out
// and hands back joined records. A failed fetch fails the whole load: callers
// never see a partial join.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	academicstore "github.com/dalemusser/rekaphub/internal/app/store/academic"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	dormitorystore "github.com/dalemusser/rekaphub/internal/app/store/dormitory"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnavailable is wrapped around the first fetch that failed.
var ErrUnavailable = errors.New("data unavailable")

// Loader runs the fetches behind every recap view.
type Loader struct {
	students    *studentstore.Store
	classes     *lookupstore.Store
	dormitories *lookupstore.Store
	courses     *lookupstore.Store
	academic    *academicstore.Store
	dormitory   *dormitorystore.Store
	log         *zap.Logger
}

// NewLoader builds a Loader over b.
func NewLoader(b backend.Backend, logger *zap.Logger) *Loader {
	return &Loader{
		students:    studentstore.New(b),
		classes:     lookupstore.Classes(b),
		dormitories: lookupstore.Dormitories(b),
		courses:     lookupstore.Courses(b),
		academic:    academicstore.New(b),
		dormitory:   dormitorystore.New(b),
		log:         logger,
	}
}

// AcademicFilter narrows an academic load. Records of students outside
// ClassID fall out at the join.
type AcademicFilter struct {
	Period     models.PeriodScope
	From, To   string
	StudentIDs []string
	ClassID    string
}

// DormitoryFilter narrows a dormitory load. Only dormitory-affiliated
// students are loaded, so records of anyone else fall out at the join.
type DormitoryFilter struct {
	Period      models.PeriodScope
	From, To    string
	StudentIDs  []string
	DormitoryID string
}

// Result is a joined record stream plus the lookups it was built from.
type Result struct {
	Lookups recap.Lookups
	Records []recap.Record
}

// fanout runs every fetch concurrently; the first error cancels the rest.
type fanout struct {
	g   *errgroup.Group
	ctx context.Context
}

func newFanout(ctx context.Context) *fanout {
	g, gctx := errgroup.WithContext(ctx)
	return &fanout{g: g, ctx: gctx}
}

func (f *fanout) run(name string, fn func(ctx context.Context) error) {
	f.g.Go(func() error {
		if err := fn(f.ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, name, err)
		}
		return nil
	})
}

func (l *Loader) wait(f *fanout, what string) error {
	if err := f.g.Wait(); err != nil {
		l.log.Warn("dataset load failed", zap.String("dataset", what), zap.Error(err))
		return err
	}
	return nil
}

// Academic loads permissions and absences joined by class.
func (l *Loader) Academic(ctx context.Context, filter AcademicFilter) (Result, error) {
	var (
		studs    []models.Student
		cls, crs []models.Named
		perms    []models.AcademicPermission
		abs      []models.AcademicAbsence
		af       = academicstore.Filter{Period: filter.Period, From: filter.From, To: filter.To, StudentIDs: filter.StudentIDs}
	)
	f := newFanout(ctx)
	f.run("students", func(ctx context.Context) (err error) {
		studs, err = l.students.List(ctx, studentstore.ListFilter{ClassID: filter.ClassID})
		return err
	})
	f.run("classes", func(ctx context.Context) (err error) {
		cls, err = l.classes.List(ctx)
		return err
	})
	f.run("courses", func(ctx context.Context) (err error) {
		crs, err = l.courses.List(ctx)
		return err
	})
	f.run("academic permissions", func(ctx context.Context) (err error) {
		perms, err = l.academic.Permissions(ctx, af)
		return err
	})
	f.run("academic absences", func(ctx context.Context) (err error) {
		abs, err = l.academic.Absences(ctx, af)
		return err
	})
	if err := l.wait(f, "academic"); err != nil {
		return Result{}, err
	}

	lk := recap.NewLookups(studs, cls, nil, crs)
	return Result{Lookups: lk, Records: recap.JoinAcademic(lk, perms, abs)}, nil
}

func (l *Loader) dormitoryBase(f *fanout, filter DormitoryFilter, studs *[]models.Student, dorms *[]models.Named) {
	f.run("students", func(ctx context.Context) (err error) {
		*studs, err = l.students.List(ctx, studentstore.ListFilter{
			DormitoryID: filter.DormitoryID,
			Affiliation: studentstore.AffiliationDormitory,
		})
		return err
	})
	f.run("dormitories", func(ctx context.Context) (err error) {
		*dorms, err = l.dormitories.List(ctx)
		return err
	})
}

func (filter DormitoryFilter) store() dormitorystore.Filter {
	return dormitorystore.Filter{Period: filter.Period, From: filter.From, To: filter.To, StudentIDs: filter.StudentIDs}
}

// DormitoryLeaves loads leaves joined by dormitory.
func (l *Loader) DormitoryLeaves(ctx context.Context, filter DormitoryFilter) (Result, error) {
	var (
		studs  []models.Student
		dorms  []models.Named
		leaves []models.DormitoryPermission
	)
	f := newFanout(ctx)
	l.dormitoryBase(f, filter, &studs, &dorms)
	f.run("dormitory leaves", func(ctx context.Context) (err error) {
		leaves, err = l.dormitory.Leaves(ctx, filter.store())
		return err
	})
	if err := l.wait(f, "dormitory leaves"); err != nil {
		return Result{}, err
	}

	lk := recap.NewLookups(studs, nil, dorms, nil)
	return Result{Lookups: lk, Records: recap.JoinDormitoryLeaves(lk, leaves)}, nil
}

// DormitoryAbsences loads prayer and ceremony absences joined by dormitory.
func (l *Loader) DormitoryAbsences(ctx context.Context, filter DormitoryFilter) (Result, error) {
	var (
		studs      []models.Student
		dorms      []models.Named
		prayers    []models.PrayerAbsence
		ceremonies []models.CeremonyAbsence
	)
	f := newFanout(ctx)
	l.dormitoryBase(f, filter, &studs, &dorms)
	f.run("prayer absences", func(ctx context.Context) (err error) {
		prayers, err = l.dormitory.PrayerAbsences(ctx, filter.store())
		return err
	})
	f.run("ceremony absences", func(ctx context.Context) (err error) {
		ceremonies, err = l.dormitory.CeremonyAbsences(ctx, filter.store())
		return err
	})
	if err := l.wait(f, "dormitory absences"); err != nil {
		return Result{}, err
	}

	lk := recap.NewLookups(studs, nil, dorms, nil)
	return Result{Lookups: lk, Records: recap.JoinDormitoryAbsences(lk, prayers, ceremonies)}, nil
}
