package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Razorpay      RazorpayConfig
	Payments      PaymentsConfig
	Notifications NotificationsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Cron          CronConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.RateLimit.TrustedProxyNets(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NURSERY_APP_ENV" required:"true"`
	Port         string `envconfig:"NURSERY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NURSERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NURSERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NURSERY_DB_DSN"`
	Driver string `envconfig:"NURSERY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"NURSERY_DB_HOST"`
	Port     int    `envconfig:"NURSERY_DB_PORT" default:"5432"`
	User     string `envconfig:"NURSERY_DB_USER"`
	Password string `envconfig:"NURSERY_DB_PASSWORD"`
	Name     string `envconfig:"NURSERY_DB_NAME"`
	SSLMode  string `envconfig:"NURSERY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"NURSERY_SQLITE_PATH" default:"nursery.db"`

	MaxOpenConns    int           `envconfig:"NURSERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NURSERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NURSERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NURSERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NURSERY_REDIS_URL"`
	Address      string        `envconfig:"NURSERY_REDIS_ADDR"`
	Password     string        `envconfig:"NURSERY_REDIS_PASSWORD"`
	DB           int           `envconfig:"NURSERY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NURSERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NURSERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NURSERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NURSERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NURSERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Without one the
// API falls back to in-process rate limiting and skips the webhook event guard.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig holds the verification side of the access tokens minted by the auth service.
type JWTConfig struct {
	Secret string `envconfig:"NURSERY_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"NURSERY_JWT_ISSUER" required:"true"`
}

type RateLimitConfig struct {
	Backend        string        `envconfig:"NURSERY_RATE_LIMIT_BACKEND" default:"memory"`
	SweepInterval  time.Duration `envconfig:"NURSERY_RATE_LIMIT_SWEEP_INTERVAL" default:"1m"`
	CancelLimit    int           `envconfig:"NURSERY_RATE_LIMIT_CANCEL_LIMIT" default:"10"`
	CancelWindow   time.Duration `envconfig:"NURSERY_RATE_LIMIT_CANCEL_WINDOW" default:"1m"`
	PincodeLimit   int           `envconfig:"NURSERY_RATE_LIMIT_PINCODE_LIMIT" default:"30"`
	PincodeWindow  time.Duration `envconfig:"NURSERY_RATE_LIMIT_PINCODE_WINDOW" default:"1m"`
	CouponLimit    int           `envconfig:"NURSERY_RATE_LIMIT_COUPON_LIMIT" default:"20"`
	CouponWindow   time.Duration `envconfig:"NURSERY_RATE_LIMIT_COUPON_WINDOW" default:"1m"`
	CheckoutLimit  int           `envconfig:"NURSERY_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
	CheckoutWindow time.Duration `envconfig:"NURSERY_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	// TrustedProxies lists the load balancer addresses (IPs or CIDRs) whose
	// X-Forwarded-For header is believed. Empty means the peer address is used.
	TrustedProxies []string `envconfig:"NURSERY_RATE_LIMIT_TRUSTED_PROXIES"`
}

// TrustedProxyNets parses TrustedProxies. A bare IP becomes a single-host network.
func (r RateLimitConfig) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("%s: invalid address %q", EnvRateLimitTrustedProxies, entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvRateLimitTrustedProxies, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// UseRedis reports whether counters should be shared across instances.
func (r RateLimitConfig) UseRedis() bool {
	return strings.EqualFold(strings.TrimSpace(r.Backend), RateLimitBackendRedis)
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NURSERY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NURSERY_AUTO_MIGRATE" default:"false"`
}

type RazorpayConfig struct {
	KeyID         string        `envconfig:"NURSERY_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"NURSERY_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"NURSERY_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	BaseURL       string        `envconfig:"NURSERY_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	Timeout       time.Duration `envconfig:"NURSERY_RAZORPAY_TIMEOUT" default:"10s"`
	Currency      string        `envconfig:"NURSERY_RAZORPAY_CURRENCY" default:"INR"`
}

type PaymentsConfig struct {
	// AmountTolerancePaise is the largest accepted gap between captured and re-priced totals.
	AmountTolerancePaise int64         `envconfig:"NURSERY_PAYMENTS_AMOUNT_TOLERANCE_PAISE" default:"100"`
	SweepGrace           time.Duration `envconfig:"NURSERY_PAYMENTS_SWEEP_GRACE" default:"15m"`
	PendingExpiry        time.Duration `envconfig:"NURSERY_PAYMENTS_PENDING_EXPIRY" default:"2h"`
	PendingRetention     time.Duration `envconfig:"NURSERY_PAYMENTS_PENDING_RETENTION" default:"168h"`
	FailedRetention      time.Duration `envconfig:"NURSERY_PAYMENTS_FAILED_RETENTION" default:"720h"`
	WebhookEventTTL      time.Duration `envconfig:"NURSERY_PAYMENTS_WEBHOOK_EVENT_TTL" default:"72h"`
}

type NotificationsConfig struct {
	Backend    string        `envconfig:"NURSERY_NOTIFICATIONS_BACKEND" default:"log"`
	Timeout    time.Duration `envconfig:"NURSERY_NOTIFICATIONS_TIMEOUT" default:"10s"`
	AdminEmail string        `envconfig:"NURSERY_NOTIFICATIONS_ADMIN_EMAIL"`
}

// UsePubSub reports whether notifications are published to Pub/Sub.
func (n NotificationsConfig) UsePubSub() bool {
	return strings.EqualFold(strings.TrimSpace(n.Backend), NotificationBackendPubSub)
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NURSERY_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"NURSERY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"NURSERY_PUBSUB_NOTIFICATION_TOPIC" default:"nursery-notification-events"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"NURSERY_CRON_INTERVAL" default:"5m"`
	LockTTL     time.Duration `envconfig:"NURSERY_CRON_LOCK_TTL" default:"4m"`
	SweepBatch  int           `envconfig:"NURSERY_CRON_SWEEP_BATCH" default:"50"`
	MetricsPort string        `envconfig:"NURSERY_CRON_METRICS_PORT" default:"9091"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"NURSERY_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
