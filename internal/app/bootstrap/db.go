// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/rekaphub/internal/app/store/backend/memory"
	"github.com/dalemusser/rekaphub/internal/app/store/backend/mongobackend"
	"github.com/dalemusser/rekaphub/internal/app/store/backend/pgbackend"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB opens the configured backend and pings it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{Kind: appCfg.Backend}
	switch appCfg.Backend {
	case BackendMongo:
		b, err := mongobackend.Open(ctx, appCfg.MongoURI, appCfg.MongoDatabase, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
		}
		deps.Backend = b
	case BackendPostgres:
		b, err := pgbackend.Open(ctx, appCfg.PostgresDSN, appCfg.AutoMigrate, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect postgres: %w", err)
		}
		deps.Backend = b
	case BackendMemory:
		deps.Backend = memory.New()
	default:
		return DBDeps{}, fmt.Errorf("unknown backend %q", appCfg.Backend)
	}

	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := deps.Backend.Ping(pctx); err != nil {
		_ = deps.Backend.Close(ctx)
		return DBDeps{}, fmt.Errorf("ping %s: %w", appCfg.Backend, err)
	}
	logger.Info("backend connected", zap.String("backend", appCfg.Backend))
	return deps, nil
}

// EnsureSchema creates indexes (mongo) or migrates tables (postgres).
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()
	if err := deps.Backend.EnsureSchema(ctx); err != nil {
		logger.Error("ensure schema failed", zap.String("backend", deps.Kind), zap.Error(err))
		return err
	}
	return nil
}
