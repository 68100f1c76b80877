package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment   string              `mapstructure:"environment" envconfig:"ENVIRONMENT" default:"development"`
	Server        ServerConfig        `mapstructure:"http_server" envconfig:"HTTP"`
	Database      DatabaseConfig      `mapstructure:"database" envconfig:"DB"`
	Redis         RedisConfig         `mapstructure:"redis" envconfig:"REDIS"`
	Security      SecurityConfig      `mapstructure:"security" envconfig:"SECURITY"`
	Authorization AuthorizationConfig `mapstructure:"authorization" envconfig:"AUTHZ"`
	Kyc           KycConfig           `mapstructure:"kyc" envconfig:"KYC"`
	Observability ObservabilityConfig `mapstructure:"observability" envconfig:"OBSERVABILITY"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"PORT" default:"8080"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	OpenAPIFile       string        `mapstructure:"openapi_file" envconfig:"OPENAPI_FILE" default:"./api/openapi.yml"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit" envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
	Source          string        `mapstructure:"source" envconfig:"SOURCE" required:"true"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" envconfig:"ADDR" default:"localhost:6379"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int    `mapstructure:"db" envconfig:"DB"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret" envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret" envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" envconfig:"ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" envconfig:"REFRESH_TOKEN_DURATION" default:"168h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST" default:"12"`
}

// AuthorizationConfig drives the permission cache and the admin menu.
type AuthorizationConfig struct {
	MenuFile           string        `mapstructure:"menu_file" envconfig:"MENU_FILE" default:"./config/menu.yml"`
	PermissionCacheTTL time.Duration `mapstructure:"permission_cache_ttl" envconfig:"PERMISSION_CACHE_TTL" default:"10m"`
	CacheKeyPrefix     string        `mapstructure:"cache_key_prefix" envconfig:"CACHE_KEY_PREFIX" default:"drivelink:permissions"`
	WarmerWorkers      int           `mapstructure:"warmer_workers" envconfig:"WARMER_WORKERS" default:"4"`
	WarmerQueueSize    int           `mapstructure:"warmer_queue_size" envconfig:"WARMER_QUEUE_SIZE" default:"256"`
}

type KycConfig struct {
	RejectionPolicy string `mapstructure:"rejection_policy" envconfig:"REJECTION_POLICY" default:"retain"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" envconfig:"LOGGING"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL" default:"info"`
	Format string `mapstructure:"format" envconfig:"FORMAT" default:"json"`
}

// LoadConfigFromEnv builds the config from DRIVELINK_* variables for container deployments.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("DRIVELINK", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Authorization.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("authorization config: %v", err))
	}

	if err := c.Kyc.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("kyc config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits the comma separated allowed_origins value.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("access_token_secret must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("refresh_token_secret must be at least 32 characters")
	}
	if c.AccessTokenDuration > time.Hour {
		return errors.New("access_token_duration must not exceed 1h")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *AuthorizationConfig) Validate() error {
	if c.MenuFile == "" {
		return errors.New("menu_file is required")
	}
	if c.PermissionCacheTTL <= 0 {
		return errors.New("permission_cache_ttl must be positive")
	}
	return nil
}

func (c *KycConfig) Validate() error {
	switch c.RejectionPolicy {
	case "", "retain", "reset":
		return nil
	default:
		return fmt.Errorf("unknown rejection_policy %q", c.RejectionPolicy)
	}
}
