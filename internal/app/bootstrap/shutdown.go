// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown closes the backend connection.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Backend == nil {
		return nil
	}
	logger.Info("closing backend", zap.String("backend", deps.Kind))
	if err := deps.Backend.Close(ctx); err != nil {
		logger.Error("backend close failed", zap.Error(err))
		return err
	}
	return nil
}
