package config

import (
	"fmt"
	"time"

	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/rankforge/rankforge/pkg/logger"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Logger       logger.Config      `yaml:"logger"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Platforms    PlatformsConfig    `yaml:"platforms"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type OrchestratorConfig struct {
	MaxConcurrentJobs int    `yaml:"max_concurrent_jobs"`
	RetryDelay        string `yaml:"retry_delay"`
	TickInterval      string `yaml:"tick_interval"`
	MaxRetries        int    `yaml:"max_retries"`
	EventBuffer       int    `yaml:"event_buffer"`
	StatsInterval     string `yaml:"stats_interval"`
}

// RetryDelayDuration parses the configured retry delay.
func (c OrchestratorConfig) RetryDelayDuration() (time.Duration, error) {
	return parseDuration("retry_delay", c.RetryDelay)
}

// TickIntervalDuration parses the configured tick interval.
func (c OrchestratorConfig) TickIntervalDuration() (time.Duration, error) {
	return parseDuration("tick_interval", c.TickInterval)
}

// StatsIntervalDuration parses the configured stats update interval.
func (c OrchestratorConfig) StatsIntervalDuration() (time.Duration, error) {
	return parseDuration("stats_interval", c.StatsInterval)
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

type PlatformsConfig struct {
	WordPress PlatformConfig `yaml:"wordpress"`
	Shopify   PlatformConfig `yaml:"shopify"`
	HubSpot   PlatformConfig `yaml:"hubspot"`
}

// PlatformConfig enables a platform adapter. Credentials configured here
// act as tenant-wide defaults merged into requests that omit their own.
type PlatformConfig struct {
	Enabled     bool              `yaml:"enabled"`
	APIVersion  string            `yaml:"api_version"`
	Credentials map[string]string `yaml:"credentials"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5380
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Orchestrator.MaxConcurrentJobs == 0 {
		cfg.Orchestrator.MaxConcurrentJobs = 3
	}
	if cfg.Orchestrator.RetryDelay == "" {
		cfg.Orchestrator.RetryDelay = "5s"
	}
	if cfg.Orchestrator.TickInterval == "" {
		cfg.Orchestrator.TickInterval = "1s"
	}
	if cfg.Orchestrator.MaxRetries == 0 {
		cfg.Orchestrator.MaxRetries = 3
	}
	if cfg.Orchestrator.StatsInterval == "" {
		cfg.Orchestrator.StatsInterval = "5m"
	}

	return cfg, nil
}
