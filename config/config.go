package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// OddsSettings is the tunable policy surface for the odds engine. It is passed
// explicitly into the initializer and adjuster so policy changes never touch
// algorithm code.
type OddsSettings struct {
	// Margin is the house edge: implied probabilities of a fresh pair sum to 1+Margin
	Margin decimal.Decimal `yaml:"margin"`
	// Floor is the hard minimum any quoted odds may reach
	Floor decimal.Decimal `yaml:"floor"`
	// InitialMin/InitialMax bound the uniform draw for a new event's first odds
	InitialMin decimal.Decimal `yaml:"initial_min"`
	InitialMax decimal.Decimal `yaml:"initial_max"`
	// AdjustmentUnit and AdjustmentRate shrink the backed side by
	// AdjustmentRate per AdjustmentUnit of stake (1% per 100 units by default)
	AdjustmentUnit decimal.Decimal `yaml:"adjustment_unit"`
	AdjustmentRate decimal.Decimal `yaml:"adjustment_rate"`
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string `yaml:"database_url" validate:"required"`

	// Redis odds cache
	RedisAddr string `yaml:"redis_addr"`

	// Kafka outbox publishing
	KafkaBrokers []string `yaml:"kafka_brokers"`

	// HTTP API listener
	HTTPAddr string `yaml:"http_addr"`

	// Metrics listener
	MetricsAddr string `yaml:"metrics_addr"`

	// Betting configuration
	StartingBalance decimal.Decimal `yaml:"starting_balance"`
	Odds            OddsSettings    `yaml:"odds"`

	// Environment
	Environment string `yaml:"environment"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// DefaultOddsSettings returns the standard odds policy: 10% margin, 1.01
// floor, initial first odds drawn from [1.0, 4.0], 1% shrink per 100 staked.
func DefaultOddsSettings() OddsSettings {
	return OddsSettings{
		Margin:         decimal.RequireFromString("0.10"),
		Floor:          decimal.RequireFromString("1.01"),
		InitialMin:     decimal.RequireFromString("1.0"),
		InitialMax:     decimal.RequireFromString("4.0"),
		AdjustmentUnit: decimal.RequireFromString("100"),
		AdjustmentRate: decimal.RequireFromString("0.01"),
	}
}

// load loads configuration from an optional YAML file, then environment variables
func load() (*Config, error) {
	config := &Config{
		HTTPAddr:        ":8080",
		MetricsAddr:     ":9090",
		StartingBalance: decimal.Zero,
		Odds:            DefaultOddsSettings(),
	}

	// Optional config file; env vars take precedence
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		config.KafkaBrokers = nil
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				config.KafkaBrokers = append(config.KafkaBrokers, broker)
			}
		}
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		config.HTTPAddr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		config.MetricsAddr = v
	}
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			config.StartingBalance = parsed
		}
	}
	if v := os.Getenv("HOUSE_MARGIN"); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			config.Odds.Margin = parsed
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		config.Environment = v
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if err := validator.New().Struct(config); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	return config, nil
}
