package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Email      EmailConfig      `yaml:"email"`
	Profile    ProfileConfig    `yaml:"profile"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type YouTubeConfig struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `yaml:"token_file"`
}

// AIConfig holds credentials and model overrides for the LLM providers.
// Keys are optional here; provider selection reports the missing-credential
// case itself so that an unconfigured deployment fails at the right boundary.
type AIConfig struct {
	OpenAIAPIKey    string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicModel  string `yaml:"anthropic_model"`
	GeminiModel     string `yaml:"gemini_model"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// ProfileConfig controls whose activity is profiled and where results live.
type ProfileConfig struct {
	UserID  string `yaml:"user_id"`
	DataDir string `yaml:"data_dir"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	cfg.applyEnvFallbacks()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnvFallbacks() {
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AI.AnthropicAPIKey == "" {
		c.AI.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.Profile.UserID == "" {
		c.Profile.UserID = "default"
	}
	if c.Profile.DataDir == "" {
		c.Profile.DataDir = "data"
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 9 * * *" // Daily at 9 AM
	}
}

func (c *Config) validate() error {
	if c.YouTube.ClientID == "" {
		return fmt.Errorf("YouTube client ID is required (set GOOGLE_CLIENT_ID or youtube.client_id)")
	}
	if c.YouTube.ClientSecret == "" {
		return fmt.Errorf("YouTube client secret is required (set GOOGLE_CLIENT_SECRET or youtube.client_secret)")
	}
	if c.Email.Username == "" {
		return fmt.Errorf("Email username is required (set EMAIL_USERNAME or email.username)")
	}
	if c.Email.Password == "" {
		return fmt.Errorf("Email password is required (set EMAIL_PASSWORD or email.password)")
	}
	return nil
}
