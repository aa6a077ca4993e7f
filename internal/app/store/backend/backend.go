// Package backend is the data-access façade over the hosted store.
//
// Stores talk to a Backend with table names and a small Query value;
// the three implementations (Mongo, Postgres via gorm, in-memory) translate
// that query into their own dialect. Every failure crosses this boundary as
// a *Error so callers can decide what a failed fetch means for them.
package backend

import "context"

// Backend is the generic query/insert/update/delete contract.
//
// Rows are plain model structs. Every model has a string primary key that
// the query layer always calls "id".
type Backend interface {
	// Find decodes the rows matching q into dst (a pointer to a slice).
	Find(ctx context.Context, q Query, dst any) error

	// Count returns the number of rows matching q. Sort and Limit are ignored.
	Count(ctx context.Context, q Query) (int64, error)

	// Insert stores one row (pointer to struct) or many (slice or pointer to slice).
	Insert(ctx context.Context, table string, rows any) error

	// Update sets the given columns on the row with the given id.
	// It returns ErrNotFound when no row matched.
	Update(ctx context.Context, table, id string, set map[string]any) error

	// Delete removes the row with the given id and returns how many rows went away (0 or 1).
	Delete(ctx context.Context, table, id string) (int64, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// EnsureSchema creates indexes or tables the backend needs. Idempotent.
	EnsureSchema(ctx context.Context) error

	// Close releases connections.
	Close(ctx context.Context) error
}

// Kind names a Backend implementation in configuration.
const (
	KindMongo    = "mongo"
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

// IsKind reports whether k names a known backend implementation.
func IsKind(k string) bool {
	switch k {
	case KindMongo, KindPostgres, KindMemory:
		return true
	}
	return false
}
