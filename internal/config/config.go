package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Server settings
	HTTPAddress        string
	RateLimitPerMinute int

	// Model provider settings
	Provider       string // "openai" or "anthropic"
	OpenAIAPIKey   string
	OpenAIBaseURL  string // set to a Groq/compatible endpoint to use one
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string

	// Conversation storage settings
	StorageBackend string // "memory" or "mongo"
	MongoURI       string
	MongoDatabase  string

	// Workflow state settings
	WorkflowBackend string // "memory" or "redis"
	RedisAddr       string
	RedisPassword   string
}

// LoadConfig loads configuration from config files and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":        "HTTP_ADDRESS",
		"RateLimitPerMinute": "RATE_LIMIT_PER_MINUTE",
		"Provider":           "MODEL_PROVIDER",
		"OpenAIAPIKey":       "OPENAI_API_KEY",
		"OpenAIBaseURL":      "OPENAI_BASE_URL",
		"OpenAIModel":        "OPENAI_MODEL",
		"AnthropicKey":       "ANTHROPIC_API_KEY",
		"AnthropicModel":     "ANTHROPIC_MODEL",
		"StorageBackend":     "STORAGE_BACKEND",
		"MongoURI":           "MONGO_URI",
		"MongoDatabase":      "MONGO_DATABASE",
		"WorkflowBackend":    "WORKFLOW_BACKEND",
		"RedisAddr":          "REDIS_ADDR",
		"RedisPassword":      "REDIS_PASSWORD",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("agentdesk_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.agentdesk")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":3001")
	v.SetDefault("RateLimitPerMinute", 30)
	v.SetDefault("Provider", "openai")
	v.SetDefault("OpenAIModel", "llama-3.3-70b-versatile")
	v.SetDefault("OpenAIBaseURL", "https://api.groq.com/openai/v1")
	v.SetDefault("AnthropicModel", "claude-sonnet-4-20250514")
	v.SetDefault("StorageBackend", "memory")
	v.SetDefault("MongoDatabase", "agentdesk")
	v.SetDefault("WorkflowBackend", "memory")
	v.SetDefault("RedisAddr", "localhost:6379")
}

func validateConfig(config *Config) error {
	switch config.Provider {
	case "openai":
		if config.OpenAIAPIKey == "" {
			return fmt.Errorf("missing required environment variable: OPENAI_API_KEY")
		}
	case "anthropic":
		if config.AnthropicKey == "" {
			return fmt.Errorf("missing required environment variable: ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("unknown model provider %q, expected openai or anthropic", config.Provider)
	}

	switch config.StorageBackend {
	case "memory":
	case "mongo":
		if config.MongoURI == "" {
			return fmt.Errorf("missing required environment variable: MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown storage backend %q, expected memory or mongo", config.StorageBackend)
	}

	switch config.WorkflowBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown workflow backend %q, expected memory or redis", config.WorkflowBackend)
	}

	return nil
}
