package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Migrate      MigrateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRIMARKET_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"AGRIMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRIMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRIMARKET_DB_DSN"`
	Driver string `envconfig:"AGRIMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRIMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRIMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRIMARKET_DB_USER"`
	LegacyPassword string `envconfig:"AGRIMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRIMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRIMARKET_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"AGRIMARKET_SQLITE_PATH" default:"agrimarket.db"`

	MaxOpenConns    int           `envconfig:"AGRIMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRIMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRIMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRIMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables the migration lock.
type RedisConfig struct {
	URL          string        `envconfig:"AGRIMARKET_REDIS_URL"`
	Address      string        `envconfig:"AGRIMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"AGRIMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRIMARKET_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"AGRIMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRIMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRIMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGRIMARKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGRIMARKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGRIMARKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGRIMARKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGRIMARKET_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGRIMARKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGRIMARKET_AUTO_MIGRATE" default:"false"`
}

type MigrateConfig struct {
	LockKey string        `envconfig:"AGRIMARKET_MIGRATE_LOCK_KEY" default:"agrimarket:migrate:lock"`
	LockTTL time.Duration `envconfig:"AGRIMARKET_MIGRATE_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
	}
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = fmt.Sprintf("file:%s?_foreign_keys=on", db.SQLitePath)
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
