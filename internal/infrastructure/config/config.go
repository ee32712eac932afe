package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Storage     StorageConfig
	Swagger     SwaggerConfig
	Telemetry   TelemetryConfig
	Idempotency IdempotencyConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Path            string // sqlite file; empty means in-memory
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// StorageConfig holds S3-compatible object storage settings for product images
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
	// PublicBaseURL, when set, serves images from a public CDN instead of presigned URLs
	PublicBaseURL string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool     // Whether to enable Swagger endpoint
	AllowedIPs []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	LogsLevel         string // minimum level exported through the zap bridge
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings
	// Continuous profiling
	ProfilingEnabled bool
	PyroscopeAddress string
}

// IdempotencyConfig controls Idempotency-Key handling on order placement
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STORE_ prefix (e.g., STORE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return load(v)
}

// LoadFile loads configuration from an explicit file plus environment overrides
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true must be registered so AutomaticEnv can
	// still turn them off.
	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("swagger.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			LogsLevel:         v.GetString("telemetry.logs_level"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
		Idempotency: IdempotencyConfig{
			Enabled: v.GetBool("idempotency.enabled"),
			TTL:     v.GetDuration("idempotency.ttl"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 5 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty origin list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeAddress == "" {
		cfg.Telemetry.PyroscopeAddress = "http://localhost:4040"
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled or IP-restricted in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// SQLiteDSN returns the sqlite data source with foreign keys enforced
func (d *DatabaseConfig) SQLiteDSN() string {
	if d.Path == "" {
		return "file::memory:?_foreign_keys=on"
	}
	return d.Path + "?_foreign_keys=on&_busy_timeout=5000"
}

// IsSQLite reports whether the sqlite driver is selected
func (d *DatabaseConfig) IsSQLite() bool {
	return d.Driver == DriverSQLite
}
