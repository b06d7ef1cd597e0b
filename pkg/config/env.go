package config

const EnvPrefix = "AGRIMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "AGRIMARKET_APP_ENV"
	EnvLogLevel  = "AGRIMARKET_LOG_LEVEL"
	EnvDBDSN     = "AGRIMARKET_DB_DSN"
	EnvDBDriver  = "AGRIMARKET_DB_DRIVER"
	EnvDBHost    = "AGRIMARKET_DB_HOST"
	EnvDBPort    = "AGRIMARKET_DB_PORT"
	EnvDBUser    = "AGRIMARKET_DB_USER"
	EnvDBPass    = "AGRIMARKET_DB_PASSWORD"
	EnvDBName    = "AGRIMARKET_DB_NAME"
	EnvUseSQLite = "AGRIMARKET_USE_SQLITE"
	EnvRedisURL  = "AGRIMARKET_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
