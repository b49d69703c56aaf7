package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "CORRALON"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "CORRALON_APP_ENV"
	EnvPort   = "CORRALON_APP_PORT"

	EnvDBDSN  = "CORRALON_DB_DSN"
	EnvDBHost = "CORRALON_DB_HOST"
	EnvDBUser = "CORRALON_DB_USER"
	EnvDBName = "CORRALON_DB_NAME"

	EnvJWTSecret  = "CORRALON_JWT_SECRET"
	EnvJWTIssuer  = "CORRALON_JWT_ISSUER"
	EnvJWTExpMins = "CORRALON_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
