package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

type DatabaseConfig struct {
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

// MigrateURL returns the connection string with the database name as its
// path, the form expected by the migration driver.
func (c DatabaseConfig) MigrateURL() (string, error) {
	u, err := url.Parse(c.URI)
	if err != nil {
		return "", fmt.Errorf("failed to parse database uri: %w", err)
	}
	u.Path = "/" + c.Name
	return u.String(), nil
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret                string        `mapstructure:"jwt_secret"`
	Algorithm                string        `mapstructure:"algorithm"`
	AccessTokenExpireMinutes int           `mapstructure:"access_token_expire_minutes"`
	RefreshTokenTTL          time.Duration `mapstructure:"refresh_token_ttl"`
	BcryptCost               int           `mapstructure:"bcrypt_cost"`

	// RejectRefreshAsAccess closes the gap where a refresh token is accepted
	// as a bearer credential. Off by default.
	RejectRefreshAsAccess bool `mapstructure:"reject_refresh_as_access"`

	// AnalyzeRequiresAuth puts the analyze route behind authentication.
	// Off by default.
	AnalyzeRequiresAuth bool `mapstructure:"analyze_requires_auth"`
}

// AccessTokenTTL returns the access token lifetime
func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

type JobsConfig struct {
	Queue         string        `mapstructure:"queue"`
	ResultTimeout time.Duration `mapstructure:"result_timeout"`
	ResultTTL     time.Duration `mapstructure:"result_ttl"`
}

type WorkerConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	BeatEnabled   bool          `mapstructure:"beat_enabled"`
	CountInterval time.Duration `mapstructure:"count_interval"`
}

type SecurityConfig struct {
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	AuthThrottle AuthThrottleConfig `mapstructure:"auth_throttle"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// AuthThrottleConfig limits the unauthenticated auth routes per client address
type AuthThrottleConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	CacheSize         int     `mapstructure:"cache_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

var supportedAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Validate checks the settings the process cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (SECRET_KEY)")
	}
	if !supportedAlgorithms[c.Auth.Algorithm] {
		return fmt.Errorf("unsupported signing algorithm %q", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return errors.New("auth.access_token_expire_minutes must be positive")
	}
	if t := c.Security.AuthThrottle; t.Enabled && (t.RequestsPerSecond <= 0 || t.Burst <= 0 || t.CacheSize <= 0) {
		return errors.New("security.auth_throttle needs positive requests_per_second, burst and cache_size")
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return errors.New("database.uri and database.name are required")
	}
	return nil
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind env vars: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.middleware_timeout", "30s")

	// Database
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "articlehub")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.migrations_path", "file://migrations")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.access_token_expire_minutes", 30)
	v.SetDefault("auth.refresh_token_ttl", "168h") // 7 days
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.reject_refresh_as_access", false)
	v.SetDefault("auth.analyze_requires_auth", false)

	// Jobs
	v.SetDefault("jobs.queue", "articlehub:jobs")
	v.SetDefault("jobs.result_timeout", "1s")
	v.SetDefault("jobs.result_ttl", "1h")

	// Worker
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.beat_enabled", true)
	v.SetDefault("worker.count_interval", "24h")

	// Security
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests_per_minute", 120)
	v.SetDefault("security.rate_limit.burst", 20)
	v.SetDefault("security.auth_throttle.enabled", true)
	v.SetDefault("security.auth_throttle.requests_per_second", 1)
	v.SetDefault("security.auth_throttle.burst", 10)
	v.SetDefault("security.auth_throttle.cache_size", 10000)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.dir", "./logs")
}

func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		// Database
		"database.uri":  "DB_URL",
		"database.name": "DB_NAME",

		// Redis
		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",

		// Auth
		"auth.jwt_secret":                  "SECRET_KEY",
		"auth.algorithm":                   "ALGORITHM",
		"auth.access_token_expire_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",

		// Logging
		"logging.level": "LOG_LEVEL",
		"logging.dir":   "LOGS_DIR",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}
