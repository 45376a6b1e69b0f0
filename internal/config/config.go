// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigin  string        `yaml:"allowed_origin"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // 0 keeps job records forever
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects the job store backend: memory | redis | postgres | sqlite.
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	KeyPrefix string `yaml:"key_prefix"`
}

type AIConfig struct {
	Provider          string        `yaml:"provider"` // gemini | openai | compatible | static
	GeminiKey         string        `yaml:"gemini_key"`
	GeminiURL         string        `yaml:"gemini_url"`
	OpenAIKey         string        `yaml:"openai_key"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	CompatibleKey     string        `yaml:"compatible_key"`
	CompatibleBaseURL string        `yaml:"compatible_base_url"`
	DefaultModel      string        `yaml:"default_model"`
	ConcurrentLimit   int           `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxOutputTokens   int           `yaml:"max_output_tokens"`
	Temperature       float64       `yaml:"temperature"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	StaticReply       string        `yaml:"static_reply"`
}

type WorkerConfig struct {
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queue_size"`
	TaskTimeout time.Duration `yaml:"task_timeout"`
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	AI       AIConfig       `yaml:"ai"`
	Worker   WorkerConfig   `yaml:"worker"`
	Events   EventsConfig   `yaml:"events"`
	Tracing  TracingConfig  `yaml:"tracing"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies environment overrides and defaults.
// A missing file is not an error; everything can come from the environment.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg, dev)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setStr(&cfg.AI.GeminiKey, "GOOGLE_AI_API_KEY")
	setStr(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	setStr(&cfg.AI.Provider, "AI_PROVIDER")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Events.NATSURL, "NATS_URL")
	setStr(&cfg.Store.Backend, "JOB_STORE")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

func applyDefaults(cfg *Config, dev bool) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 2 * time.Minute
	}
	if cfg.Server.AllowedOrigin == "" {
		cfg.Server.AllowedOrigin = "*"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "job:"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "jobs.db"
	}

	if cfg.AI.Provider == "" {
		switch {
		case cfg.AI.GeminiKey != "":
			cfg.AI.Provider = "gemini"
		case cfg.AI.OpenAIKey != "":
			cfg.AI.Provider = "openai"
		case cfg.AI.CompatibleBaseURL != "":
			cfg.AI.Provider = "compatible"
		case dev:
			cfg.AI.Provider = "static"
		}
	}
	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	if cfg.AI.DefaultModel == "" {
		switch cfg.AI.Provider {
		case "openai", "compatible":
			cfg.AI.DefaultModel = "gpt-4o-mini"
		default:
			cfg.AI.DefaultModel = "gemini-2.5-flash"
		}
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 8192
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 90 * time.Second
	}

	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.QueueSize <= 0 {
		cfg.Worker.QueueSize = cfg.Worker.Workers * 4
	}
	if cfg.Worker.TaskTimeout <= 0 {
		cfg.Worker.TaskTimeout = 3 * time.Minute
	}

	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = "workflow.jobs"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "workflow-analyst"
	}
}

// Validate checks that the selected backends have what they need to start.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for store.backend=redis")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for store.backend=postgres")
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for store.backend=sqlite")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	switch c.AI.Provider {
	case "gemini":
		if c.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key (or GOOGLE_AI_API_KEY) is required for provider gemini")
		}
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key (or OPENAI_API_KEY) is required for provider openai")
		}
	case "compatible":
		if c.AI.CompatibleBaseURL == "" {
			return errors.New("ai.compatible_base_url is required for provider compatible")
		}
	case "static":
	case "":
		return errors.New("no AI provider configured: set ai.gemini_key, ai.openai_key or ai.compatible_base_url")
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	return nil
}
