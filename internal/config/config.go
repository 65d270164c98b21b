package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	Rules      RulesConfig      `mapstructure:"rules"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" envconfig:"REDIS_ADDR"`
	Password string `mapstructure:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"db" envconfig:"REDIS_DB"`
}

// RegistryConfig tunes the NPPES registry client.
type RegistryConfig struct {
	BaseURL    string        `mapstructure:"base_url" envconfig:"REGISTRY_BASE_URL"`
	Timeout    time.Duration `mapstructure:"timeout" envconfig:"REGISTRY_TIMEOUT"`
	MaxRetries int           `mapstructure:"max_retries" envconfig:"REGISTRY_MAX_RETRIES"`
	Backoff    time.Duration `mapstructure:"backoff" envconfig:"REGISTRY_BACKOFF"`
	RateLimit  float64       `mapstructure:"rate_limit" envconfig:"REGISTRY_RATE_LIMIT"`
	RateBurst  int           `mapstructure:"rate_burst" envconfig:"REGISTRY_RATE_BURST"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl" envconfig:"REGISTRY_CACHE_TTL"`
}

// SchedulingConfig describes the clinic calendar: consultation weekdays, the
// bookable hour range and how far ahead the search may look.
type SchedulingConfig struct {
	Weekdays     []string `mapstructure:"weekdays" envconfig:"SCHEDULING_WEEKDAYS"`
	StartHour    int      `mapstructure:"start_hour" envconfig:"SCHEDULING_START_HOUR"`
	EndHour      int      `mapstructure:"end_hour" envconfig:"SCHEDULING_END_HOUR"`
	HorizonWeeks int      `mapstructure:"horizon_weeks" envconfig:"SCHEDULING_HORIZON_WEEKS"`
	Location     string   `mapstructure:"location" envconfig:"SCHEDULING_LOCATION"`
}

// CalendarConfig selects the slot store backend: memory, postgres or redis.
type CalendarConfig struct {
	Backend string `mapstructure:"backend" envconfig:"CALENDAR_BACKEND"`
}

type RulesConfig struct {
	File string `mapstructure:"file" envconfig:"RULES_FILE"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" envconfig:"LOG_LEVEL"`
}

// LoadConfig reads config.yml from the working directory or ./config, then
// applies REFERRAL_* environment overrides. A missing file is not an error;
// defaults cover every field.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("referral", &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "referrals")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.addr", "localhost:6379")

	viper.SetDefault("registry.base_url", "https://npiregistry.cms.hhs.gov/api/")
	viper.SetDefault("registry.timeout", "30s")
	viper.SetDefault("registry.max_retries", 3)
	viper.SetDefault("registry.backoff", "1s")
	viper.SetDefault("registry.rate_limit", 5.0)
	viper.SetDefault("registry.rate_burst", 5)
	viper.SetDefault("registry.cache_ttl", "10m")

	viper.SetDefault("scheduling.weekdays", []string{"monday", "thursday"})
	viper.SetDefault("scheduling.start_hour", 11)
	viper.SetDefault("scheduling.end_hour", 15)
	viper.SetDefault("scheduling.horizon_weeks", 8)
	viper.SetDefault("scheduling.location", "Walter Reed Cardiology Clinic")

	viper.SetDefault("calendar.backend", "memory")
	viper.SetDefault("logging.level", "info")
}

func (c *Config) Validate() error {
	if c.Scheduling.StartHour >= c.Scheduling.EndHour {
		return fmt.Errorf("scheduling: start_hour %d must be before end_hour %d",
			c.Scheduling.StartHour, c.Scheduling.EndHour)
	}
	if c.Scheduling.HorizonWeeks <= 0 {
		return fmt.Errorf("scheduling: horizon_weeks must be positive, got %d", c.Scheduling.HorizonWeeks)
	}
	if _, err := c.Scheduling.ParseWeekdays(); err != nil {
		return err
	}
	switch c.Calendar.Backend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("calendar: unknown backend %q", c.Calendar.Backend)
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays converts the configured weekday names to time.Weekday values.
func (s SchedulingConfig) ParseWeekdays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(s.Weekdays))
	for _, name := range s.Weekdays {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("scheduling: unknown weekday %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}

// Horizon returns the scheduling search horizon as a duration.
func (s SchedulingConfig) Horizon() time.Duration {
	return time.Duration(s.HorizonWeeks) * 7 * 24 * time.Hour
}
