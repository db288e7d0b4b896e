package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/simonvc/minibooks/internal/ledger"
)

// Config represents the top-level minibooks.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Database string         `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	// Chart replaces the default UK chart when a new database is created.
	Chart []ChartAccount `yaml:"chart,omitempty"`
}

type BusinessConfig struct {
	Name string `yaml:"name"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen      string   `yaml:"listen"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	// PostRate is the sustained number of write requests per second; zero disables limiting.
	PostRate  float64 `yaml:"post_rate"`
	PostBurst int     `yaml:"post_burst"`
	// CacheSeconds is how long report responses stay cached for an unchanged ledger.
	CacheSeconds int `yaml:"cache_seconds"`
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers,omitempty"`
}

type ChartAccount struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Category    string `yaml:"category"`
	Description string `yaml:"description,omitempty"`
}

// Default returns a Config with sensible defaults for a local install.
func Default() *Config {
	return &Config{
		Business: BusinessConfig{Name: "My Business Ltd"},
		Database: "minibooks.db",
		Server: ServerConfig{
			Listen:       ":8888",
			CORSOrigins:  []string{"http://localhost:*"},
			PostRate:     20,
			PostBurst:    40,
			CacheSeconds: 30,
		},
	}
}

// Load reads a minibooks.yaml file on top of the defaults. An empty path
// skips the file. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MINIBOOKS_BUSINESS"); v != "" {
		c.Business.Name = v
	}
	if v := os.Getenv("MINIBOOKS_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("MINIBOOKS_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("MINIBOOKS_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("MINIBOOKS_POST_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MINIBOOKS_POST_RATE: %w", err)
		}
		c.Server.PostRate = rate
	}
	if v := os.Getenv("MINIBOOKS_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	return nil
}

// SeedChart returns the configured chart as ledger accounts, or the
// default chart when none is configured.
func (c *Config) SeedChart() ([]ledger.Account, error) {
	if len(c.Chart) == 0 {
		return ledger.DefaultChart, nil
	}
	out := make([]ledger.Account, 0, len(c.Chart))
	for _, ca := range c.Chart {
		t, err := ledger.ParseAccountType(ca.Type)
		if err != nil {
			return nil, fmt.Errorf("chart account %s: %w", ca.Code, err)
		}
		acct := ledger.Account{
			Code:        ca.Code,
			Name:        ca.Name,
			Type:        t,
			Category:    ledger.Category(ca.Category),
			Description: ca.Description,
		}
		if err := acct.Validate(); err != nil {
			return nil, fmt.Errorf("chart account %s: %w", ca.Code, err)
		}
		out = append(out, acct)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
