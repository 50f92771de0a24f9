package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	RunModeHTTP   = "http"
	RunModeLambda = "lambda"
)

// Config holds every process setting. It is read once in cmd/main.go.
type Config struct {
	Port    string `env:"PORT" envDefault:"8000"`
	Debug   bool   `env:"DEBUG" envDefault:"true"`
	RunMode string `env:"RUN_MODE" envDefault:"http"`
	// MaxBodyBytes caps /chat request bodies; 0 disables the cap.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	LLMProvider  string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMModel     string        `env:"LLM_MODEL"`
	LLMBaseURL   string        `env:"LLM_BASE_URL"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	APIKeyParam  string        `env:"API_KEY_PARAM"`

	KnowledgeFile  string `env:"KNOWLEDGE_FILE" envDefault:"data.json"`
	KnowledgeTable string `env:"KNOWLEDGE_TABLE"`

	ShopName     string `env:"SHOP_NAME" envDefault:"Pamith Tech Solutions"`
	ShopURL      string `env:"SHOP_URL" envDefault:"www.pamithtech.com"`
	ShopLocation string `env:"SHOP_LOCATION" envDefault:"Baddegama"`
}

// Load reads an optional .env file (ENV_FILE overrides the path) and then
// parses the environment. Variables already set in the environment win over
// the file.
func Load() (Config, error) {
	loadEnvFile(os.Getenv("ENV_FILE"))

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFile(path string) {
	path = strings.TrimSpace(path)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		slog.Debug("loaded env file", "path", path)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// optional
	default:
		slog.Warn("could not load env file, continuing with process environment", "path", path, "err", err)
	}
}

func (c *Config) normalize() error {
	c.Port = strings.TrimSpace(c.Port)
	c.RunMode = strings.ToLower(strings.TrimSpace(c.RunMode))
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))

	switch c.RunMode {
	case RunModeHTTP, RunModeLambda:
	default:
		return fmt.Errorf("config: unsupported RUN_MODE %q", c.RunMode)
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("config: MAX_BODY_BYTES must not be negative, got %d", c.MaxBodyBytes)
	}
	if c.RunMode == RunModeHTTP && c.Port == "" {
		return errors.New("config: PORT must not be empty")
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return strings.TrimSpace(c.OpenAIAPIKey)
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// APIKeyEnv names the environment variable holding the provider credential.
func (c Config) APIKeyEnv() string {
	if c.LLMProvider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// NeedsAWS reports whether any AWS-backed integration is configured.
func (c Config) NeedsAWS() bool {
	return strings.TrimSpace(c.APIKeyParam) != "" || strings.TrimSpace(c.KnowledgeTable) != ""
}
