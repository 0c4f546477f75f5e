package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"

	"github.com/webpos/posdash/internal/state"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	POSAPIBaseURL string        `envconfig:"POS_API_BASE_URL" default:"https://web-pos-back-end.vercel.app/api"`
	POSAPITimeout time.Duration `envconfig:"POS_API_TIMEOUT" default:"0s"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	AnalyticsCacheTTL time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"10m"`

	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionCapacity int           `envconfig:"SESSION_CAPACITY" default:"512"`
	RacePolicy      string        `envconfig:"STATE_RACE_POLICY" default:"last-resolved"`

	Timezone string `envconfig:"DASHBOARD_TIMEZONE" default:"UTC"`
	Locale   string `envconfig:"DASHBOARD_LOCALE" default:"en"`

	WarmupCron        string `envconfig:"WARMUP_CRON" default:"*/15 * * * *"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	location *time.Location
	locale   language.Tag
	policy   state.Policy
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	if strings.TrimSpace(c.POSAPIBaseURL) == "" {
		return fmt.Errorf("config: POS_API_BASE_URL must be provided")
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("config: SESSION_CAPACITY must be positive, got %d", c.SessionCapacity)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("config: DASHBOARD_TIMEZONE: %w", err)
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return fmt.Errorf("config: DASHBOARD_LOCALE: %w", err)
	}
	policy, err := state.ParsePolicy(c.RacePolicy)
	if err != nil {
		return fmt.Errorf("config: STATE_RACE_POLICY: %w", err)
	}
	c.location, c.locale, c.policy = loc, tag, policy
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location is the zone used for calendar day and month bucketing.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.UTC
	}
	return c.location
}

// LocaleTag is the collation locale for sorted text columns.
func (c *Config) LocaleTag() language.Tag {
	if c == nil || c.locale == language.Und {
		return language.English
	}
	return c.locale
}

// Policy is the stale response policy for section loads.
func (c *Config) Policy() state.Policy {
	if c == nil || c.policy == "" {
		return state.LastResolvedWins
	}
	return c.policy
}
