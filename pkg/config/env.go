package config

// EnvPrefix is passed to envconfig; fields carry fully qualified envconfig
// tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "AGRIMARKET_APP_ENV"
	EnvPort       = "AGRIMARKET_APP_PORT"
	EnvDBDSN      = "AGRIMARKET_DB_DSN"
	EnvDBHost     = "AGRIMARKET_DB_HOST"
	EnvDBUser     = "AGRIMARKET_DB_USER"
	EnvDBName     = "AGRIMARKET_DB_NAME"
	EnvRedisURL   = "AGRIMARKET_REDIS_URL"
	EnvJWTSecret  = "AGRIMARKET_JWT_SECRET"
	EnvJWTIssuer  = "AGRIMARKET_JWT_ISSUER"
	EnvJWTExpMins = "AGRIMARKET_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "AGRIMARKET_GCP_PROJECT_ID"
	EnvGCSBucket    = "AGRIMARKET_GCS_BUCKET_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
