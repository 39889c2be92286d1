package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
	} `yaml:"ai"`

	Telemetry struct {
		Endpoint       string `yaml:"endpoint"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"telemetry"`

	Directory struct {
		BaseURL        string `yaml:"baseURL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"directory"`

	Bulk struct {
		Workers  int `yaml:"workers"`
		PacingMS int `yaml:"pacingMs"`
	} `yaml:"bulk"`

	// Workflows extend or override the built-in catalog.
	Workflows []WorkflowDef `yaml:"workflows"`

	// Resources are served by the static directory when no inventory
	// service baseURL is configured.
	Resources []ResourceDef `yaml:"resources"`

	// APIKeys maps client name -> key; auth is disabled when empty.
	APIKeys map[string]string `yaml:"apiKeys"`
}

type WorkflowDef struct {
	ID              string   `yaml:"id"`
	DisplayName     string   `yaml:"display_name"`
	Description     string   `yaml:"description"`
	ResourceTypes   []string `yaml:"resource_types"`
	RequiredMetrics []string `yaml:"required_metrics"`
	PromptTemplate  string   `yaml:"prompt_template"`
	RequiresPattern bool     `yaml:"requires_pattern"`
}

type ResourceDef struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Region  string `yaml:"region"`
	Account string `yaml:"account"`
	ARN     string `yaml:"arn"`
}

// Load reads config.yaml from path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MySQLDSN builds the MySQL connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the Postgres connection string
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

// TelemetryTimeout with a short default
func (c *Config) TelemetryTimeout() time.Duration {
	if c.Telemetry.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Telemetry.TimeoutSeconds) * time.Second
}

// DirectoryTimeout for inventory lookups
func (c *Config) DirectoryTimeout() time.Duration {
	if c.Directory.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Directory.TimeoutSeconds) * time.Second
}

// BulkPacing delay between bulk dispatches
func (c *Config) BulkPacing() time.Duration {
	if c.Bulk.PacingMS <= 0 {
		return 0
	}
	return time.Duration(c.Bulk.PacingMS) * time.Millisecond
}
