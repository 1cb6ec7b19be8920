package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

// EnvPrefix marks environment overrides. Sections are separated by "__",
// so AGENTHUB_LLM__API_KEY sets llm.api_key.
const EnvPrefix = "AGENTHUB_"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds service configuration.
type Config struct {
	Server    ServerConfig  `koanf:"server"`
	Log       LogConfig     `koanf:"log"`
	Storage   StorageConfig `koanf:"storage"`
	LLM       LLMConfig     `koanf:"llm"`
	Search    SearchConfig  `koanf:"search"`
	Files     FilesConfig   `koanf:"files"`
	Admin     AdminConfig   `koanf:"admin"`
	Executors []agent.Spec  `koanf:"executors"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, console
}

type StorageConfig struct {
	Driver      string `koanf:"driver"`
	SQLitePath  string `koanf:"sqlite_path"`
	DatabaseURL string `koanf:"database_url"`
}

type LLMConfig struct {
	Provider    string  `koanf:"provider"` // gemini, anthropic
	Model       string  `koanf:"model"`
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

type SearchConfig struct {
	MaxResults int           `koanf:"max_results"`
	Timeout    time.Duration `koanf:"timeout"`
	BaseURL    string        `koanf:"base_url"`
	CacheSize  int           `koanf:"cache_size"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

type FilesConfig struct {
	UploadDir string `koanf:"upload_dir"`
	OutputDir string `koanf:"output_dir"`
	MaxSize   int64  `koanf:"max_size"`
}

type AdminConfig struct {
	APIKeyHash string `koanf:"api_key_hash"`
}

var defaults = map[string]interface{}{
	"server.addr":            "0.0.0.0:8080",
	"server.request_timeout": "30s",
	"log.level":              "info",
	"log.format":             "json",
	"storage.driver":         DriverSQLite,
	"storage.sqlite_path":    "agent_hub.db",
	"llm.provider":           "gemini",
	"llm.model":              "gemini-2.0-flash",
	"llm.temperature":        0.7,
	"llm.max_tokens":         8192,
	"search.max_results":     10,
	"search.timeout":         "30s",
	"search.base_url":        "https://html.duckduckgo.com/html/",
	"search.cache_size":      256,
	"search.cache_ttl":       "10m",
	"files.upload_dir":       "uploads",
	"files.output_dir":       "outputs",
	"files.max_size":         50 * 1024 * 1024,
}

// Load reads defaults, then the YAML file at path when set, then the
// environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Executors) == 0 {
		cfg.Executors = agent.DefaultSpecs()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.LLM.Provider {
	case "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}

	for i, s := range c.Executors {
		if _, err := executor.ParseType(s.Type); err != nil {
			return fmt.Errorf("executors[%d]: %w", i, err)
		}
		if s.Count < 0 {
			return fmt.Errorf("executors[%d]: count must not be negative", i)
		}
	}
	return nil
}
