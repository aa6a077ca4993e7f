// internal/app/seed/seed.go
//
// Package seed loads master data from a YAML fixture: classes, dormitories,
// courses, students and admin profiles. Loading is repeatable; rows that
// already exist (by case-folded name or username) are skipped.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	profilestore "github.com/dalemusser/rekaphub/internal/app/store/profiles"
	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/app/system/authutil"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Student struct {
	Name      string `yaml:"name"`
	Class     string `yaml:"class"`
	Dormitory string `yaml:"dormitory"`
}

type Profile struct {
	Username string `yaml:"username"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

// Fixture is the file layout.
type Fixture struct {
	Classes     []string  `yaml:"classes"`
	Dormitories []string  `yaml:"dormitories"`
	Courses     []string  `yaml:"courses"`
	Students    []Student `yaml:"students"`
	Profiles    []Profile `yaml:"profiles"`
}

// Summary counts what Apply created and skipped.
type Summary struct {
	Classes     int `json:"classes"`
	Dormitories int `json:"dormitories"`
	Courses     int `json:"courses"`
	Students    int `json:"students"`
	Profiles    int `json:"profiles"`
	Skipped     int `json:"skipped"`
}

// Parse reads a fixture. Unknown keys are an error.
func Parse(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fx, nil
}

// Validate checks the fixture without touching storage: every student
// names a known class and dormitory, every profile a known role and a
// password that passes the password rules.
func (fx Fixture) Validate() error {
	classes := foldSet(fx.Classes)
	dorms := foldSet(fx.Dormitories)
	var errs []error
	for i, st := range fx.Students {
		if text.Fold(st.Name) == "" {
			errs = append(errs, fmt.Errorf("students[%d]: name is required", i))
		}
		if st.Class != "" && !classes[text.Fold(st.Class)] {
			errs = append(errs, fmt.Errorf("students[%d]: unknown class %q", i, st.Class))
		}
		if st.Dormitory != "" && !dorms[text.Fold(st.Dormitory)] {
			errs = append(errs, fmt.Errorf("students[%d]: unknown dormitory %q", i, st.Dormitory))
		}
	}
	for i, p := range fx.Profiles {
		if text.Fold(p.Username) == "" {
			errs = append(errs, fmt.Errorf("profiles[%d]: username is required", i))
		}
		if !models.IsRole(p.Role) {
			errs = append(errs, fmt.Errorf("profiles[%d]: unknown role %q", i, p.Role))
		}
		if err := authutil.ValidatePassword(p.Password); err != nil {
			errs = append(errs, fmt.Errorf("profiles[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func foldSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[text.Fold(n)] = true
	}
	return m
}

// Loader writes fixtures through the stores.
type Loader struct {
	Classes     *lookupstore.Store
	Dormitories *lookupstore.Store
	Courses     *lookupstore.Store
	Students    *studentstore.Store
	Profiles    *profilestore.Store
	Log         *zap.Logger
}

func NewLoader(b backend.Backend, logger *zap.Logger) *Loader {
	return &Loader{
		Classes:     lookupstore.Classes(b),
		Dormitories: lookupstore.Dormitories(b),
		Courses:     lookupstore.Courses(b),
		Students:    studentstore.New(b),
		Profiles:    profilestore.New(b),
		Log:         logger,
	}
}

// Apply validates fx and then stores whatever is missing.
func (l *Loader) Apply(ctx context.Context, fx Fixture) (Summary, error) {
	if err := fx.Validate(); err != nil {
		return Summary{}, err
	}
	var sum Summary

	classIDs, n, err := l.lookups(ctx, l.Classes, fx.Classes, &sum)
	if err != nil {
		return sum, err
	}
	sum.Classes = n
	dormIDs, n, err := l.lookups(ctx, l.Dormitories, fx.Dormitories, &sum)
	if err != nil {
		return sum, err
	}
	sum.Dormitories = n
	if _, n, err = l.lookups(ctx, l.Courses, fx.Courses, &sum); err != nil {
		return sum, err
	}
	sum.Courses = n

	if sum.Students, err = l.students(ctx, fx.Students, classIDs, dormIDs, &sum); err != nil {
		return sum, err
	}
	if sum.Profiles, err = l.profiles(ctx, fx.Profiles, &sum); err != nil {
		return sum, err
	}
	l.Log.Info("seed applied",
		zap.Int("classes", sum.Classes),
		zap.Int("dormitories", sum.Dormitories),
		zap.Int("courses", sum.Courses),
		zap.Int("students", sum.Students),
		zap.Int("profiles", sum.Profiles),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// lookups creates the names a table lacks and returns folded name -> id
// for the whole table.
func (l *Loader) lookups(ctx context.Context, s *lookupstore.Store, names []string, sum *Summary) (map[string]string, int, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: list: %w", s.Table(), err)
	}
	ids := make(map[string]string, len(rows)+len(names))
	for _, r := range rows {
		ids[text.Fold(r.Name)] = r.ID
	}
	var missing []string
	for _, n := range names {
		ci := text.Fold(n)
		if _, ok := ids[ci]; ok {
			sum.Skipped++
			continue
		}
		ids[ci] = ""
		missing = append(missing, n)
	}
	created, err := s.CreateMany(ctx, missing)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: create: %w", s.Table(), err)
	}
	for _, r := range created {
		ids[text.Fold(r.Name)] = r.ID
	}
	return ids, len(created), nil
}

func ref(name string, ids map[string]string) *string {
	if name == "" {
		return nil
	}
	id := ids[text.Fold(name)]
	return &id
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// students skips a student whose folded name already sits in the same
// class and dormitory.
func (l *Loader) students(ctx context.Context, in []Student, classIDs, dormIDs map[string]string, sum *Summary) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	existing, err := l.Students.List(ctx, studentstore.ListFilter{})
	if err != nil {
		return 0, fmt.Errorf("students: list: %w", err)
	}
	key := func(name string, classID, dormID *string) string {
		return text.Fold(name) + "\x00" + deref(classID) + "\x00" + deref(dormID)
	}
	have := make(map[string]bool, len(existing))
	for _, st := range existing {
		have[key(st.Name, st.ClassID, st.DormitoryID)] = true
	}

	batch := make([]models.Student, 0, len(in))
	for _, st := range in {
		cid, did := ref(st.Class, classIDs), ref(st.Dormitory, dormIDs)
		k := key(st.Name, cid, did)
		if have[k] {
			sum.Skipped++
			continue
		}
		have[k] = true
		batch = append(batch, models.Student{Name: st.Name, ClassID: cid, DormitoryID: did})
	}
	if len(batch) == 0 {
		return 0, nil
	}
	rows, err := l.Students.CreateMany(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("students: create: %w", err)
	}
	return len(rows), nil
}

// profiles never touches an existing account, password included.
func (l *Loader) profiles(ctx context.Context, in []Profile, sum *Summary) (int, error) {
	n := 0
	for _, p := range in {
		_, err := l.Profiles.GetByUsername(ctx, p.Username)
		if err == nil {
			sum.Skipped++
			continue
		}
		if !backend.IsNotFound(err) {
			return n, fmt.Errorf("profiles: lookup %q: %w", p.Username, err)
		}
		hash, err := authutil.HashPassword(p.Password)
		if err != nil {
			return n, fmt.Errorf("profiles: hash %q: %w", p.Username, err)
		}
		if _, err := l.Profiles.Create(ctx, p.Username, p.Role, hash); err != nil {
			if errors.Is(err, profilestore.ErrDuplicateUsername) {
				sum.Skipped++
				continue
			}
			return n, fmt.Errorf("profiles: create %q: %w", p.Username, err)
		}
		n++
	}
	return n, nil
}
