package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite = "sqlite"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"

	NotificationBackendLog    = "log"
	NotificationBackendPubSub = "pubsub"
)

const (
	EnvAppEnv                  = "NURSERY_APP_ENV"
	EnvPort                    = "NURSERY_APP_PORT"
	EnvDBDSN                   = "NURSERY_DB_DSN"
	EnvDBHost                  = "NURSERY_DB_HOST"
	EnvDBUser                  = "NURSERY_DB_USER"
	EnvDBName                  = "NURSERY_DB_NAME"
	EnvUseSQLite               = "NURSERY_USE_SQLITE"
	EnvRedisURL                = "NURSERY_REDIS_URL"
	EnvJWTSecret               = "NURSERY_JWT_SECRET"
	EnvJWTIssuer               = "NURSERY_JWT_ISSUER"
	EnvRateLimitBackend        = "NURSERY_RATE_LIMIT_BACKEND"
	EnvRateLimitTrustedProxies = "NURSERY_RATE_LIMIT_TRUSTED_PROXIES"
	EnvRazorpayKeyID           = "NURSERY_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret       = "NURSERY_RAZORPAY_KEY_SECRET"
	EnvRazorpayWebhookSecret   = "NURSERY_RAZORPAY_WEBHOOK_SECRET"
	EnvRazorpayTimeout         = "NURSERY_RAZORPAY_TIMEOUT"
	EnvPaymentsTolerance       = "NURSERY_PAYMENTS_AMOUNT_TOLERANCE_PAISE"
	EnvNotificationsBackend    = "NURSERY_NOTIFICATIONS_BACKEND"
	EnvGCPProjectID            = "NURSERY_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "NURSERY_PUBSUB_NOTIFICATION_TOPIC"
	EnvCORSAllowedOrigins      = "NURSERY_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
