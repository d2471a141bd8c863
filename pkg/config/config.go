package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Pricing struct {
		MinPrice            float64 `yaml:"min_price"`
		MaxPrice            float64 `yaml:"max_price"`
		GridStep            float64 `yaml:"grid_step"`
		MaxAbsChange        float64 `yaml:"max_abs_change"`
		MinMarginPerLiter   float64 `yaml:"min_margin_per_liter"`
		CompetitiveMaxDelta float64 `yaml:"competitive_max_delta"`
	} `yaml:"pricing"`
	History struct {
		Backend         string        `yaml:"backend"` // csv or clickhouse
		CSVPath         string        `yaml:"csv_path"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"history"`
	Model struct {
		ServiceURL        string        `yaml:"service_url"`
		FeatureConfigPath string        `yaml:"feature_config_path"`
		Timeout           time.Duration `yaml:"timeout"`
		Retries           int           `yaml:"retries"`
	} `yaml:"model"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Audit struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
	} `yaml:"audit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("HISTORY_CSV_PATH"); v != "" {
		c.History.CSVPath = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Audit.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}

	return c, nil
}

// applyDefaults fills business-rule defaults so a minimal config still prices.
func (c *Config) applyDefaults() {
	if c.Pricing.MinPrice == 0 {
		c.Pricing.MinPrice = 50.0
	}
	if c.Pricing.MaxPrice == 0 {
		c.Pricing.MaxPrice = 120.0
	}
	if c.Pricing.GridStep == 0 {
		c.Pricing.GridStep = 0.05
	}
	if c.Pricing.MaxAbsChange == 0 {
		c.Pricing.MaxAbsChange = 1.0
	}
	if c.Pricing.MinMarginPerLiter == 0 {
		c.Pricing.MinMarginPerLiter = 0.5
	}
	if c.Pricing.CompetitiveMaxDelta == 0 {
		c.Pricing.CompetitiveMaxDelta = 0.5
	}
	if c.History.Backend == "" {
		c.History.Backend = "csv"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Model.Retries == 0 {
		c.Model.Retries = 3
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.History.Backend != "csv" && c.History.Backend != "clickhouse" {
		return fmt.Errorf("history.backend must be 'csv' or 'clickhouse', got '%s'", c.History.Backend)
	}
	if c.History.Backend == "csv" && c.History.CSVPath == "" {
		return fmt.Errorf("history.csv_path is required for csv backend")
	}
	if c.History.Backend == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required for clickhouse backend")
	}
	if c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required")
	}
	if c.Model.FeatureConfigPath == "" {
		return fmt.Errorf("model.feature_config_path is required")
	}
	if c.Pricing.GridStep <= 0 {
		return fmt.Errorf("pricing.grid_step must be positive")
	}
	if c.Pricing.MinPrice >= c.Pricing.MaxPrice {
		return fmt.Errorf("pricing.min_price must be below pricing.max_price")
	}
	if c.Audit.Enabled && len(c.Audit.Brokers) == 0 {
		return fmt.Errorf("audit.brokers cannot be empty when audit is enabled")
	}
	return nil
}
