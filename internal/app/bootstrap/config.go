// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Backend kinds.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// appConfigKeys defines the configuration keys for rekaphub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: REKAPHUB_MONGO_URI, REKAPHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "backend", Default: BackendMongo, Desc: "Data store: 'mongo', 'postgres' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "rekaphub", Desc: "MongoDB database name"},
	{Name: "postgres_dsn", Default: "", Desc: "Postgres DSN (backend=postgres)"},
	{Name: "auto_migrate", Default: true, Desc: "Create or update postgres tables at startup"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "rekaphub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session lifetime"},

	{Name: "followup_cookie_key", Default: "dev-only-followup-key-0123456789ABCDEF", Desc: "Signing key for the follow-up acknowledgment cookie"},
	{Name: "followup_max_ids", Default: 64, Desc: "Most acknowledged absence ids one browser remembers"},

	{Name: "default_academic_year", Default: "", Desc: "Academic year used when sign-in omits one (e.g. 2024/2025; blank derives it from today)"},
	{Name: "default_semester", Default: "", Desc: "Semester used when sign-in omits one: 1, 2, ganjil or genap"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-row reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for lists and writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for recap loads and reports"},
	{Name: "timezone", Default: "Asia/Jakarta", Desc: "IANA time zone school days are counted in"},

	{Name: "superadmin_username", Default: "", Desc: "Username of the super admin created or promoted at startup"},
	{Name: "superadmin_password", Default: "", Desc: "Initial password for superadmin_username when the account is created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "REKAPHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		Backend:       strings.ToLower(strings.TrimSpace(appValues.String("backend"))),
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		PostgresDSN:   appValues.String("postgres_dsn"),
		AutoMigrate:   appValues.Bool("auto_migrate"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		FollowUpCookieKey: appValues.String("followup_cookie_key"),
		FollowUpMaxIDs:    appValues.Int("followup_max_ids"),

		DefaultPeriod: models.PeriodScope{
			AcademicYear: strings.TrimSpace(appValues.String("default_academic_year")),
			Semester:     strings.TrimSpace(appValues.String("default_semester")),
		},

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
		Timezone:      appValues.String("timezone"),

		SuperAdminUsername: strings.TrimSpace(appValues.String("superadmin_username")),
		SuperAdminPassword: appValues.String("superadmin_password"),
	}
	if s := models.NormalizeSemester(appCfg.DefaultPeriod.Semester); s != "" {
		appCfg.DefaultPeriod.Semester = s
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configuration that would fail later at runtime.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.Backend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when backend is mongo")
		}
	case BackendPostgres:
		if strings.TrimSpace(appCfg.PostgresDSN) == "" {
			return fmt.Errorf("postgres_dsn is required when backend is postgres")
		}
	case BackendMemory:
		logger.Warn("memory backend selected: data is lost on restart")
	default:
		return fmt.Errorf("unknown backend %q (want mongo, postgres or memory)", appCfg.Backend)
	}

	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", appCfg.Timezone, err)
	}
	if y := appCfg.DefaultPeriod.AcademicYear; y != "" && !inputval.IsAcademicYear(y) {
		return fmt.Errorf("default_academic_year %q must look like 2024/2025", y)
	}
	if s := appCfg.DefaultPeriod.Semester; s != "" && models.NormalizeSemester(s) == "" {
		return fmt.Errorf("default_semester %q must be 1, 2, ganjil or genap", s)
	}
	if appCfg.FollowUpMaxIDs < 0 {
		return fmt.Errorf("followup_max_ids must not be negative")
	}
	if len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 bytes")
	}
	if len(appCfg.FollowUpCookieKey) < 32 {
		return fmt.Errorf("followup_cookie_key must be at least 32 bytes")
	}
	if appCfg.SuperAdminPassword != "" && appCfg.SuperAdminUsername == "" {
		return fmt.Errorf("superadmin_password is set but superadmin_username is empty")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}
