// internal/app/bootstrap/dbdeps.go
package bootstrap

import "github.com/dalemusser/rekaphub/internal/app/store/backend"

// DBDeps holds the data store every feature reads and writes through.
type DBDeps struct {
	Backend backend.Backend
	Kind    string // one of BackendMongo, BackendPostgres, BackendMemory
}
