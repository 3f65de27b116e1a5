package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type BackendConfig struct {
	URL            string `mapstructure:"url"`
	InternalAPIKey string `mapstructure:"internal_api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// WebhookConfig points at the backend endpoint that receives follow-up
// analysis results. The key travels in the X-Internal-Key header.
type WebhookConfig struct {
	URL            string `mapstructure:"url"`
	InternalKey    string `mapstructure:"internal_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type AgentConfig struct {
	MaxIterations  int `mapstructure:"max_iterations"`
	HistoryLimit   int `mapstructure:"history_limit"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type AnalysisConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.environment", "development")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 3000)
	v.SetDefault("openai.temperature", 0.4)
	v.SetDefault("backend.url", "http://127.0.0.1:8000")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("webhook.timeout_seconds", 30)
	v.SetDefault("agent.max_iterations", 10)
	v.SetDefault("agent.history_limit", 20)
	v.SetDefault("agent.timeout_seconds", 60)
	v.SetDefault("analysis.temperature", 0.3)
	v.SetDefault("analysis.max_tokens", 800)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Environment overrides for secrets and deployment-specific values
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if backendURL := v.GetString("BACKEND_URL"); backendURL != "" {
		config.Backend.URL = backendURL
	}
	if backendKey := v.GetString("BACKEND_INTERNAL_API_KEY"); backendKey != "" {
		config.Backend.InternalAPIKey = backendKey
	}
	if webhookKey := v.GetString("INTERNAL_API_KEY"); webhookKey != "" {
		config.Webhook.InternalKey = webhookKey
	}
	if port := v.GetInt("PORT"); port != 0 {
		config.Server.Port = port
	}

	// The webhook lives on the same backend unless configured otherwise
	if config.Webhook.URL == "" {
		config.Webhook.URL = fmt.Sprintf("%s/api/seguimiento/webhook-ia", config.Backend.URL)
	}

	return &config, nil
}
