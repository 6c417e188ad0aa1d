package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix namespaces every environment variable the server reads.
// Nesting levels are separated by a double underscore:
// EXAMCRAFT_LLM__API_KEY sets llm.api_key.
const EnvPrefix = "EXAMCRAFT_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	LLM        LLMConfig        `koanf:"llm"`
	Generation GenerationConfig `koanf:"generation"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Address         string        `koanf:"address" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// LLMConfig selects the flashcard generation backend. URL is the
// OpenAI-compatible endpoint and is ignored for gemini.
type LLMConfig struct {
	Provider string        `koanf:"provider" validate:"oneof=openai gemini"`
	URL      string        `koanf:"url" validate:"required_if=Provider openai"`
	Model    string        `koanf:"model" validate:"required"`
	APIKey   string        `koanf:"api_key" validate:"required_if=Provider gemini"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type GenerationConfig struct {
	Workers   int `koanf:"workers" validate:"min=1,max=32"`
	QueueSize int `koanf:"queue_size" validate:"min=1"`
}

type LogConfig struct {
	Level       string `koanf:"level" validate:"oneof=debug info warn error"`
	Development bool   `koanf:"development"`
}

// RegisterFlags adds every config key, with its default, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "optional YAML config file")
	fs.String("server.address", ":8080", "HTTP listen address")
	fs.Duration("server.shutdown_timeout", 10*time.Second, "graceful shutdown timeout")
	fs.String("database.path", "examcraft.db", "SQLite database file")
	fs.String("llm.provider", "openai", "flashcard generation backend: openai or gemini")
	fs.String("llm.url", "http://localhost:1234", "OpenAI-compatible endpoint")
	fs.String("llm.model", "qwen3-8b", "LLM model name")
	fs.String("llm.api_key", "", "LLM API key")
	fs.Duration("llm.timeout", 120*time.Second, "timeout for one LLM call")
	fs.Int("generation.workers", 3, "concurrent generation jobs")
	fs.Int("generation.queue_size", 16, "queued generation jobs before submit blocks")
	fs.String("log.level", "info", "log level: debug, info, warn, error")
	fs.Bool("log.development", false, "human-readable development logging")
}

// Load builds the configuration from, in increasing priority: flag
// defaults, the optional YAML file, a .env file, EXAMCRAFT_ environment
// variables and flags set on the command line.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	// Changed flags override everything; unchanged ones only fill gaps.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("config: load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// envKey maps EXAMCRAFT_SERVER__SHUTDOWN_TIMEOUT to server.shutdown_timeout.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
