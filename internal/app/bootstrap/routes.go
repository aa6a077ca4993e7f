// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	academicfeature "github.com/dalemusser/rekaphub/internal/app/features/academic"
	dashboardfeature "github.com/dalemusser/rekaphub/internal/app/features/dashboard"
	dormitoryfeature "github.com/dalemusser/rekaphub/internal/app/features/dormitory"
	errorsfeature "github.com/dalemusser/rekaphub/internal/app/features/errors"
	followupfeature "github.com/dalemusser/rekaphub/internal/app/features/followup"
	healthfeature "github.com/dalemusser/rekaphub/internal/app/features/health"
	loginfeature "github.com/dalemusser/rekaphub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/rekaphub/internal/app/features/logout"
	lookupsfeature "github.com/dalemusser/rekaphub/internal/app/features/lookups"
	profilefeature "github.com/dalemusser/rekaphub/internal/app/features/profile"
	profilesfeature "github.com/dalemusser/rekaphub/internal/app/features/profiles"
	reportsfeature "github.com/dalemusser/rekaphub/internal/app/features/reports"
	studentsfeature "github.com/dalemusser/rekaphub/internal/app/features/students"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/followup"
	"github.com/dalemusser/rekaphub/internal/app/system/ratelimit"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// WAFFLE calls this after config, backend connection, schema setup and
// Startup. Every feature gets the same backend; role gates live in each
// feature's Routes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	ackCodec := followup.NewCookieCodec([]byte(appCfg.FollowUpCookieKey), "", appCfg.FollowUpMaxIDs, secure)

	errLog := errorsfeature.NewErrorLogger(logger)
	b := deps.Backend

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Loads the SessionUser into context when the cookie is valid.
	r.Use(sessionMgr.LoadSessionUser)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)
	r.Get("/forbidden", errorsHandler.Forbidden)

	healthHandler := healthfeature.NewHandler(b, deps.Kind, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication and period selection
	period := defaultPeriod(appCfg.DefaultPeriod, calendar.Today())
	loginHandler := loginfeature.NewHandler(b, sessionMgr, ratelimit.NewLoginLimiter(), period, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/period", loginfeature.PeriodRoutes(loginHandler, sessionMgr))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Role-based dashboards
	dashboardHandler := dashboardfeature.NewHandler(b, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Master data
	studentsHandler := studentsfeature.NewHandler(b, errLog, logger)
	r.Mount("/students", studentsfeature.Routes(studentsHandler, sessionMgr))

	academicWriters := []string{models.RoleAcademicAdmin, models.RoleSuperAdmin}
	dormitoryWriters := []string{models.RoleDormitoryAdmin, models.RoleSuperAdmin}
	r.Mount("/classes", lookupsfeature.Routes(
		lookupsfeature.NewHandler(lookupstore.Classes(b), "class", errLog, logger), sessionMgr, academicWriters...))
	r.Mount("/courses", lookupsfeature.Routes(
		lookupsfeature.NewHandler(lookupstore.Courses(b), "course", errLog, logger), sessionMgr, academicWriters...))
	r.Mount("/dormitories", lookupsfeature.Routes(
		lookupsfeature.NewHandler(lookupstore.Dormitories(b), "dormitory", errLog, logger), sessionMgr, dormitoryWriters...))

	// Attendance domains
	academicHandler := academicfeature.NewHandler(b, errLog, logger)
	r.Mount("/academic", academicfeature.Routes(academicHandler, sessionMgr))

	dormitoryHandler := dormitoryfeature.NewHandler(b, errLog, logger)
	r.Mount("/dormitory", dormitoryfeature.Routes(dormitoryHandler, sessionMgr))

	followupHandler := followupfeature.NewHandler(b, ackCodec, errLog, logger)
	r.Mount("/followup", followupfeature.Routes(followupHandler, sessionMgr))

	// Reports
	reportsHandler := reportsfeature.NewHandler(b, errLog, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	// Accounts
	profileHandler := profilefeature.NewHandler(b, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	profilesHandler := profilesfeature.NewHandler(b, errLog, logger)
	r.Mount("/profiles", profilesfeature.Routes(profilesHandler, sessionMgr))

	return r, nil
}
