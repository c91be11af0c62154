package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Databases         Databases         `yaml:"databases"`
	Source            string            `yaml:"source" validate:"oneof=postgres mysql mongo sample"`
	Analytics         Analytics         `yaml:"analytics"`
	Cache             Cache             `yaml:"cache"`
	Export            Export            `yaml:"export"`
	Classifier        Classifier        `yaml:"classifier"`
	Log               Log               `yaml:"log"`
	BenchmarkSettings BenchmarkSettings `yaml:"benchmark_settings"`
}

type Databases struct {
	Postgres      string `yaml:"postgres"`
	MySQL         string `yaml:"mysql"`
	Mongo         string `yaml:"mongo"`
	MongoDatabase string `yaml:"mongo_database"`
}

type Analytics struct {
	RecentWindowDays int `yaml:"recent_window_days" validate:"gte=1"`
	TopN             int `yaml:"top_n" validate:"gte=1"`
}

type Cache struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" validate:"required_if=Enabled true"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl"`
}

type Export struct {
	Dir string `yaml:"dir" validate:"required"`
}

type Classifier struct {
	ModelPath string `yaml:"model_path"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type BenchmarkSettings struct {
	DefaultDuration    string `yaml:"default_duration"`
	DefaultConcurrency int    `yaml:"default_concurrency" validate:"gte=1"`
}

// Duration parses DefaultDuration, falling back to 30s.
func (b BenchmarkSettings) Duration() time.Duration {
	if d, err := time.ParseDuration(b.DefaultDuration); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

func Default() *Config {
	return &Config{
		Source: "sample",
		Databases: Databases{
			MongoDatabase: "northwind",
		},
		Analytics: Analytics{
			RecentWindowDays: 180,
			TopN:             10,
		},
		Cache: Cache{
			Addr: "localhost:6379",
			TTL:  120 * time.Second,
		},
		Export: Export{Dir: "data/enriched"},
		Log:    Log{Level: "info", Format: "json"},
		BenchmarkSettings: BenchmarkSettings{
			DefaultDuration:    "30s",
			DefaultConcurrency: 10,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides (a .env file in the working directory is loaded
// first) and validates the result. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func applyEnv(c *Config) {
	c.Databases.Postgres = getEnv("POSTGRES_DSN", c.Databases.Postgres)
	c.Databases.MySQL = getEnv("MYSQL_DSN", c.Databases.MySQL)
	c.Databases.Mongo = getEnv("MONGO_DSN", c.Databases.Mongo)
	c.Databases.MongoDatabase = getEnv("MONGO_DATABASE", c.Databases.MongoDatabase)
	c.Source = getEnv("ANALYTICS_SOURCE", c.Source)
	c.Cache.Addr = getEnv("REDIS_ADDR", c.Cache.Addr)
	c.Cache.Password = getEnv("REDIS_PASSWORD", c.Cache.Password)
	c.Cache.Enabled = getEnvBool("ENABLE_REPORT_CACHE", c.Cache.Enabled)
	if ttl := getEnvInt("REPORT_CACHE_TTL_SECONDS", 0); ttl > 0 {
		c.Cache.TTL = time.Duration(ttl) * time.Second
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

// DSN returns the connection string configured for source.
func (c *Config) DSN(source string) string {
	switch source {
	case "postgres":
		return c.Databases.Postgres
	case "mysql":
		return c.Databases.MySQL
	case "mongo":
		return c.Databases.Mongo
	}
	return ""
}
