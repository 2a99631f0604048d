package config

import (
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata" // distroless images ship without zoneinfo

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Booking    BookingConfig    `yaml:"booking"`
	Reaper     ReaperConfig     `yaml:"reaper"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Events     EventsConfig     `yaml:"events"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                 int     `yaml:"port"`
	RateLimitPerSec      float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst       int     `yaml:"rate_limit_burst"`
	RateLimitIdleMinutes int     `yaml:"rate_limit_idle_minutes"` // limiters of idle clients are dropped after this
	CacheTTLSeconds      int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// Conflict modes for the exclusivity check.
const (
	ConflictExact   = "exact"
	ConflictOverlap = "overlap"
)

// BookingConfig holds the booking policy.
type BookingConfig struct {
	Timezone                 string         `yaml:"timezone"`
	Location                 *time.Location `yaml:"-"`
	SlotMinutes              int            `yaml:"slot_minutes"`
	MaxSlots                 int            `yaml:"max_slots"`
	LastStartHour            int            `yaml:"last_start_hour"`
	ReassignThresholdMinutes int            `yaml:"reassign_threshold_minutes"`
	GracePeriodMinutes       int            `yaml:"grace_period_minutes"`
	ConflictMode             string         `yaml:"conflict_mode"`
}

// ReaperConfig holds the no-show sweep configuration.
type ReaperConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AuthConfig holds the settings for verifying tokens issued by the auth service.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	AdminRole string `yaml:"admin_role"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// EventsConfig holds the RabbitMQ publisher configuration.
type EventsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// envOverrides are the values that may be supplied through FACILITY_* variables.
type envOverrides struct {
	DatabaseDSN   string `envconfig:"DATABASE_DSN"`
	ServerPort    int    `envconfig:"SERVER_PORT"`
	AuthJWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	EventsAMQPURL string `envconfig:"EVENTS_AMQP_URL"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Reaper:     ReaperConfig{Enabled: true},
		WorkerPool: WorkerPoolConfig{Size: 1},
	}
	if err := cfg.normalize(); err != nil {
		// UTC always loads.
		panic(err)
	}
	return cfg
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("FACILITY", &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.DatabaseDSN != "" {
		cfg.Database.DSN = env.DatabaseDSN
	}
	if env.ServerPort > 0 {
		cfg.Server.Port = env.ServerPort
	}
	if env.AuthJWTSecret != "" {
		cfg.Auth.JWTSecret = env.AuthJWTSecret
	}
	if env.EventsAMQPURL != "" {
		cfg.Events.AMQPURL = env.EventsAMQPURL
	}
	return nil
}

func (cfg *Config) normalize() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.RateLimitIdleMinutes <= 0 {
		cfg.Server.RateLimitIdleMinutes = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	b := &cfg.Booking
	if b.Timezone == "" {
		b.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", b.Timezone, err)
	}
	b.Location = loc
	if b.SlotMinutes <= 0 {
		b.SlotMinutes = 45
	}
	if b.MaxSlots <= 0 {
		b.MaxSlots = 16
	}
	if b.LastStartHour <= 0 || b.LastStartHour > 24 {
		b.LastStartHour = 23
	}
	if b.ReassignThresholdMinutes <= 0 {
		b.ReassignThresholdMinutes = 25
	}
	if b.GracePeriodMinutes <= 0 {
		b.GracePeriodMinutes = 15
	}
	switch b.ConflictMode {
	case "":
		b.ConflictMode = ConflictExact
	case ConflictExact, ConflictOverlap:
	default:
		return fmt.Errorf("unknown booking.conflict_mode %q", b.ConflictMode)
	}

	if cfg.Reaper.IntervalSeconds <= 0 {
		cfg.Reaper.IntervalSeconds = 60
	}
	cfg.Reaper.Interval = time.Duration(cfg.Reaper.IntervalSeconds) * time.Second

	if cfg.Auth.AdminRole == "" {
		cfg.Auth.AdminRole = "ADMIN"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Events.Exchange == "" {
		cfg.Events.Exchange = "facility.exchange"
	}
	return nil
}
