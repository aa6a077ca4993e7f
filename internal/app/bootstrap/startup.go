// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	profilestore "github.com/dalemusser/rekaphub/internal/app/store/profiles"
	"github.com/dalemusser/rekaphub/internal/app/system/authutil"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup applies the configured time zone and timeouts and makes sure the
// bootstrap super admin exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	calendar.Configure(loc)
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.SuperAdminUsername == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	return ensureSuperAdmin(ctx, deps.Backend, appCfg.SuperAdminUsername, appCfg.SuperAdminPassword, logger)
}

// ensureSuperAdmin creates username as a super admin, or promotes the
// existing account. An existing password is never overwritten.
func ensureSuperAdmin(ctx context.Context, b backend.Backend, username, password string, logger *zap.Logger) error {
	store := profilestore.New(b)
	p, err := store.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if p.Role == models.RoleSuperAdmin {
			return nil
		}
		if err := store.Update(ctx, p.ID, p.Username, models.RoleSuperAdmin); err != nil {
			return fmt.Errorf("promote super admin: %w", err)
		}
		logger.Info("promoted profile to super admin", zap.String("username", p.Username), zap.String("previous_role", p.Role))
		return nil
	case !backend.IsNotFound(err):
		return fmt.Errorf("look up super admin: %w", err)
	}

	if password == "" {
		return fmt.Errorf("superadmin_password is required to create %q", username)
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("superadmin_password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.Create(ctx, username, models.RoleSuperAdmin, hash); err != nil {
		return fmt.Errorf("create super admin: %w", err)
	}
	logger.Info("created super admin", zap.String("username", username))
	return nil
}

// defaultPeriod fills blank parts of cfg from today. The academic year
// starts in July: July to December is semester 1 of Y/Y+1, January to
// June is semester 2 of Y-1/Y.
func defaultPeriod(cfg models.PeriodScope, today time.Time) models.PeriodScope {
	y := today.Year()
	year, sem := strconv.Itoa(y-1)+"/"+strconv.Itoa(y), "2"
	if today.Month() >= time.July {
		year, sem = strconv.Itoa(y)+"/"+strconv.Itoa(y+1), "1"
	}
	if cfg.AcademicYear == "" {
		cfg.AcademicYear = year
	}
	if cfg.Semester == "" {
		cfg.Semester = sem
	}
	return cfg
}
