package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "LEITBOX_"

// Defaults.
const (
	DefaultStatePath = "leitner_state.json"
	DefaultLogLevel  = "warn"
	DefaultReposDir  = ".leitbox/repos"
	DefaultDueLimit  = 50
)

// Config holds the resolved settings of one command invocation.
type Config struct {
	StatePath string `koanf:"state" validate:"required"`
	LogLevel  string `koanf:"log-level" validate:"oneof=debug info warn error"`
	ReposDir  string `koanf:"repos-dir" validate:"required"`
	DueLimit  int    `koanf:"due-limit" validate:"min=1"`
}

// RegisterFlags adds the configuration flags to fs. Their defaults are the
// lowest configuration layer.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("state", DefaultStatePath, "Path to state JSON file")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String("repos-dir", DefaultReposDir, "Directory where git deck repositories are cached")
	fs.Int("due-limit", DefaultDueLimit, "Default number of cards listed by 'due'")
}

// Load resolves the configuration: flag defaults, then the config file, then
// LEITBOX_* environment variables, then explicitly set flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	configPath, _ := fs.GetString("config")
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps LEITBOX_REPOS_DIR to repos-dir.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
