// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/rekaphub/internal/domain/models"
)

// AppConfig holds rekaphub's own configuration, loaded in LoadConfig from
// flags, REKAPHUB_* environment variables, config files and defaults.
//
// WAFFLE's CoreConfig covers the framework side (ports, TLS, log level,
// request limits). Everything here is specific to this app.
type AppConfig struct {
	// Backend selects the data store: "mongo", "postgres" or "memory".
	Backend string

	MongoURI      string
	MongoDatabase string

	PostgresDSN string
	AutoMigrate bool // create/alter postgres tables at startup

	// Session cookie
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration

	// Follow-up acknowledgment cookie
	FollowUpCookieKey string
	FollowUpMaxIDs    int

	// DefaultPeriod fills in whatever the sign-in form leaves blank. Zero
	// fields are derived from today's date.
	DefaultPeriod models.PeriodScope

	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Timezone is the IANA zone school days are counted in.
	Timezone string

	// SuperAdmin bootstrap: when both are set, Startup makes sure this
	// account exists with the super_admin role.
	SuperAdminUsername string
	SuperAdminPassword string
}
