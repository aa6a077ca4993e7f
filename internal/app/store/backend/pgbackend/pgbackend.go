// Package pgbackend implements backend.Backend on PostgreSQL through gorm.
package pgbackend

import (
	"context"
	"errors"
	"reflect"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Backend struct {
	db          *gorm.DB
	log         *zap.Logger
	autoMigrate bool
}

var _ backend.Backend = (*Backend)(nil)

// tableModels is the migration set; Delete also needs a model per table.
var tableModels = map[string]func() any{
	models.TableStudents:                  func() any { return &models.Student{} },
	models.TableClasses:                   func() any { return &models.Class{} },
	models.TableDormitories:               func() any { return &models.Dormitory{} },
	models.TableCourses:                   func() any { return &models.Course{} },
	models.TableAcademicPermissions:       func() any { return &models.AcademicPermission{} },
	models.TableAcademicAbsences:          func() any { return &models.AcademicAbsence{} },
	models.TableDormitoryPermissions:      func() any { return &models.DormitoryPermission{} },
	models.TableDormitoryPrayerAbsences:   func() any { return &models.PrayerAbsence{} },
	models.TableDormitoryCeremonyAbsences: func() any { return &models.CeremonyAbsence{} },
	models.TableProfiles:                  func() any { return &models.Profile{} },
}

// Open connects with dsn. The simple protocol avoids prepared-statement
// caching, which poolers in front of Postgres tend to break.
func Open(ctx context.Context, dsn string, autoMigrate bool, logger *zap.Logger) (*Backend, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, backend.Fail("connect", "", "postgres open", err)
	}
	b := &Backend{db: db, log: logger, autoMigrate: autoMigrate}
	if err := b.Ping(ctx); err != nil {
		_ = b.Close(ctx)
		return nil, err
	}
	logger.Info("connected to PostgreSQL")
	return b, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB, autoMigrate bool, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{db: db, log: logger, autoMigrate: autoMigrate}
}

func (b *Backend) Find(ctx context.Context, q backend.Query, dst any) error {
	if err := findStmt(b.db.WithContext(ctx), q).Find(dst).Error; err != nil {
		return translate("find", q.Table, err)
	}
	return nil
}

func (b *Backend) Count(ctx context.Context, q backend.Query) (int64, error) {
	var n int64
	tx := b.db.WithContext(ctx).Table(q.Table)
	if exprs := whereExprs(q.Filters); len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate("count", q.Table, err)
	}
	return n, nil
}

func (b *Backend) Insert(ctx context.Context, table string, rows any) error {
	v := addressable(rows)
	if v == nil {
		return nil
	}
	// A single multi-row INSERT, so a batch lands whole or not at all.
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).Create(v).Error
	})
	return translate("insert", table, err)
}

func (b *Backend) Update(ctx context.Context, table, id string, set map[string]any) error {
	res := b.db.WithContext(ctx).Table(table).
		Clauses(clause.Where{Exprs: []clause.Expression{idEq(id)}}).
		Updates(set)
	if res.Error != nil {
		return translate("update", table, res.Error)
	}
	if res.RowsAffected == 0 {
		return backend.Fail("update", table, id, backend.ErrNotFound)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, table, id string) (int64, error) {
	mk, ok := tableModels[table]
	if !ok {
		return 0, backend.Fail("delete", table, "unknown table", nil)
	}
	res := b.db.WithContext(ctx).
		Clauses(clause.Where{Exprs: []clause.Expression{idEq(id)}}).
		Delete(mk())
	if res.Error != nil {
		return 0, translate("delete", table, res.Error)
	}
	return res.RowsAffected, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return backend.Wrap("ping", "", err)
	}
	return backend.Wrap("ping", "", sqlDB.PingContext(ctx))
}

// EnsureSchema runs AutoMigrate when enabled; otherwise the schema is managed outside the app.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	if !b.autoMigrate {
		b.log.Info("auto_migrate disabled; skipping postgres migration")
		return nil
	}
	all := make([]any, 0, len(tableModels))
	for _, mk := range tableModels {
		all = append(all, mk())
	}
	if err := b.db.WithContext(ctx).AutoMigrate(all...); err != nil {
		return backend.Fail("schema", "", "auto migrate", err)
	}
	return nil
}

func (b *Backend) Close(context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return backend.Wrap("close", "", err)
	}
	return backend.Wrap("close", "", sqlDB.Close())
}

func findStmt(tx *gorm.DB, q backend.Query) *gorm.DB {
	tx = tx.Table(q.Table)
	if exprs := whereExprs(q.Filters); len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	for _, k := range q.Sort {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: k.Field}, Desc: k.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(int(q.Limit))
	}
	return tx
}

func idEq(id string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "id"}, Value: id}
}

func whereExprs(filters []backend.Filter) []clause.Expression {
	out := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		col := clause.Column{Name: f.Field}
		switch f.Op {
		case backend.OpEq:
			out = append(out, clause.Eq{Column: col, Value: f.Value})
		case backend.OpIn:
			out = append(out, clause.IN{Column: col, Values: toAnys(f.Value)})
		case backend.OpGte:
			out = append(out, clause.Gte{Column: col, Value: f.Value})
		case backend.OpLte:
			out = append(out, clause.Lte{Column: col, Value: f.Value})
		case backend.OpIsNull:
			out = append(out, clause.Eq{Column: col, Value: nil})
		case backend.OpNotNull:
			out = append(out, clause.Neq{Column: col, Value: nil})
		}
	}
	return out
}

func toAnys(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// addressable returns something gorm can Create: a pointer to a struct or
// to a slice. Empty slices yield nil.
func addressable(rows any) any {
	rv := reflect.ValueOf(rows)
	switch {
	case rv.Kind() == reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		return p.Interface()
	case rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Slice && rv.Elem().Len() == 0:
		return nil
	}
	return rows
}

func translate(op, table string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return backend.Fail(op, table, "unique key", backend.ErrDuplicate)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return backend.Fail(op, table, "", backend.ErrNotFound)
	}
	return backend.Wrap(op, table, err)
}
