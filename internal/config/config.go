// Package config loads BrainStack settings from flags, the environment and
// an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/brainstack/internal/ai"
	"github.com/conorfennell/brainstack/internal/domain"
)

// EnvPrefix prefixes every BrainStack environment variable. Nested keys are
// separated by a double underscore, as in BRAINSTACK_DATABASE__DSN.
const EnvPrefix = "BRAINSTACK_"

// APIKeyEnv is read for the AI key when nothing more specific is set.
const APIKeyEnv = "OPENAI_API_KEY"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	AI       AIConfig       `koanf:"ai"`
	Grading  GradingConfig  `koanf:"grading"`
	Import   ImportConfig   `koanf:"import"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr        string   `koanf:"addr" validate:"required"`
	CORSOrigins []string `koanf:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `koanf:"dsn" validate:"required"`
}

type AIConfig struct {
	URL         string        `koanf:"url" validate:"required,url"`
	Model       string        `koanf:"model" validate:"required"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	Temperature float64       `koanf:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `koanf:"max_tokens" validate:"gt=0"`
	// Fallback answers with simple questions built from the cards when the
	// model cannot be reached.
	Fallback bool `koanf:"fallback"`
}

type GradingConfig struct {
	Threshold float64 `koanf:"threshold" validate:"gt=0,lte=1"`
}

type ImportConfig struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

type LogConfig struct {
	Env string `koanf:"env" validate:"oneof=development production"`
}

// RegisterFlags defines one flag per setting. Flag defaults are the
// configuration defaults.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("server.addr", ":8080", "Address the HTTP API listens on")
	flags.StringSlice("server.cors_origins", []string{"*"}, "Origins allowed to call the HTTP API")
	flags.String("database.driver", "sqlite", "Database driver: sqlite or postgres")
	flags.String("database.dsn", "brainstack.db", "Database file path or connection string")
	flags.String("ai.url", ai.DefaultURL, "Chat completions endpoint")
	flags.String("ai.model", ai.DefaultModel, "Model used to generate practice questions")
	flags.String("ai.api_key", "", "API key for the chat completions endpoint")
	flags.Duration("ai.timeout", ai.DefaultTimeout, "Timeout of a generation request")
	flags.Float64("ai.temperature", ai.DefaultTemperature, "Sampling temperature")
	flags.Int("ai.max_tokens", ai.DefaultMaxTokens, "Maximum tokens in a generated reply")
	flags.Bool("ai.fallback", true, "Build simple questions from the cards when generation fails")
	flags.Float64("grading.threshold", ai.DefaultThreshold, "Similarity at which an answer is accepted")
	flags.String("import.repos_dir", "repos", "Directory holding cloned deck repositories")
	flags.String("log.env", "development", "Logger preset: development or production")
}

// Load merges, from lowest to highest priority, flag defaults, the YAML file
// named by the config flag, OPENAI_API_KEY, BRAINSTACK_* variables and flags
// set on the command line. A .env file in the working directory is read into
// the environment first.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	path, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(APIKeyEnv, ".", func(s string) string {
		if s != APIKeyEnv {
			return ""
		}
		return "ai.api_key"
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", APIKeyEnv, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flags left at their default only fill keys no other source set.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := domain.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
