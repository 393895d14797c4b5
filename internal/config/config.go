package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds stat-engine configuration. Week boundaries and the award
// catalog location are deliberately environment-driven, never hard-coded.
type Config struct {
	Port           string        `envconfig:"STAT_ENGINE_PORT" default:":8084"`
	DatabaseDSN    string        `envconfig:"STAT_ENGINE_DSN" required:"true"`
	RedisURL       string        `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	CatalogPath    string        `envconfig:"AWARD_CATALOG_PATH" default:"configs/awards.json"`
	WeekStartDay   string        `envconfig:"WEEK_START_DAY" default:"Monday"`
	RecalcInterval time.Duration `envconfig:"RECALC_INTERVAL" default:"30s"`
	ConsumerID     string        `envconfig:"STAT_CONSUMER_ID" default:"stat-engine-1"`
	GroupName      string        `envconfig:"STAT_GROUP_NAME" default:"stat-engines"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// New loads configuration from the environment.
func New() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if _, err := c.WeekStart(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WeekStart resolves the configured week start day name.
func (c *Config) WeekStart() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), c.WeekStartDay) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid WEEK_START_DAY %q", c.WeekStartDay)
}
