package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Supported analysis providers
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderRemote    = "remote"
	ProviderFake      = "fake"
)

// DefaultModels maps each LLM provider to the model used when none is configured
var DefaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderOpenAI:    "gpt-4.1-mini",
	ProviderOllama:    "llama3.1",
	ProviderFake:      "fake",
}

// Config represents the application configuration
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Remote     RemoteConfig     `yaml:"remote"`
	Server     ServerConfig     `yaml:"server"`
	Processing ProcessingConfig `yaml:"processing"`
}

// LLMConfig represents the analysis provider configuration
type LLMConfig struct {
	Provider          string  `yaml:"provider"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	MaxPromptTokens   int     `yaml:"max_prompt_tokens"`
	RetryCount        int     `yaml:"retry_count"`
	RetryDelaySeconds int     `yaml:"retry_delay_seconds"`
}

// RemoteConfig represents an external analysis endpoint
type RemoteConfig struct {
	URL            string `yaml:"url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ServerConfig represents the web server configuration
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	SessionTTLMinutes   int    `yaml:"session_ttl_minutes"`
	MaxSessions         int    `yaml:"max_sessions"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	SecureCookies       bool   `yaml:"secure_cookies"`
}

// ProcessingConfig represents CLI output configuration
type ProcessingConfig struct {
	OutputDir   string `yaml:"output_dir"`
	SaveResults bool   `yaml:"save_results"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          ProviderGemini,
			TimeoutSeconds:    120,
			MaxTokens:         8192,
			Temperature:       0.4,
			RetryCount:        1,
			RetryDelaySeconds: 2,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 120,
		},
		Server: ServerConfig{
			Addr:                ":8080",
			SessionTTLMinutes:   60,
			MaxSessions:         1024,
			PollIntervalSeconds: 2,
		},
		Processing: ProcessingConfig{
			OutputDir: "output",
		},
	}
}

// LoadConfig loads configuration from a YAML file, .env and the environment.
// A missing file is not an error; defaults and environment values apply.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.ApplyEnv(os.Getenv)
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides configured values with environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if v := strings.TrimSpace(getenv("LLM_PROVIDER")); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("LLM_MODEL")); v != "" {
		c.LLM.Model = v
	}
	if key := providerAPIKey(c.LLM.Provider, getenv); key != "" {
		c.LLM.APIKey = key
	}
	if v := strings.TrimSpace(getenv("OLLAMA_HOST")); v != "" && c.LLM.Provider == ProviderOllama {
		c.LLM.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("REMOTE_ANALYZER_URL")); v != "" {
		c.Remote.URL = v
	}
	if v := strings.TrimSpace(getenv("REMOTE_ANALYZER_TOKEN")); v != "" {
		c.Remote.APIToken = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if strings.HasPrefix(v, ":") {
			c.Server.Addr = v
		} else {
			c.Server.Addr = ":" + v
		}
	}
	if v := strings.TrimSpace(getenv("LLM_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.TimeoutSeconds = n
		}
	}
}

func providerAPIKey(provider string, getenv func(string) string) string {
	var names []string
	switch provider {
	case ProviderGemini:
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}
	case ProviderAnthropic:
		names = []string{"ANTHROPIC_API_KEY", "API_KEY"}
	case ProviderOpenAI:
		names = []string{"OPENAI_API_KEY", "API_KEY"}
	}
	for _, name := range names {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModels[c.LLM.Provider]
	}
	if c.LLM.Provider == ProviderOllama && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434"
	}
	if c.LLM.RetryCount < 1 {
		c.LLM.RetryCount = 1
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%s API key is required", c.LLM.Provider)
		}
	case ProviderOllama:
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("ollama base URL is required")
		}
	case ProviderRemote:
		if c.Remote.URL == "" {
			return fmt.Errorf("remote analyzer URL is required")
		}
		if c.Remote.TimeoutSeconds <= 0 {
			return fmt.Errorf("remote timeout must be positive")
		}
	case ProviderFake:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive")
	}
	if c.LLM.RetryDelaySeconds < 0 {
		return fmt.Errorf("llm retry delay cannot be negative")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server max sessions must be positive")
	}
	if c.Server.SessionTTLMinutes <= 0 {
		return fmt.Errorf("server session TTL must be positive")
	}

	return nil
}

// Timeout returns the LLM transport timeout
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base delay between transport retries
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// SessionTTL returns how long an idle web session is kept
func (c ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// PollInterval returns the refresh interval of the analyzing page
func (c ServerConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
