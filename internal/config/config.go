package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "CONTRACT_REDLINER_CONFIG"
	openAIAPIKeyEnv      = "OPENAI_API_KEY"
	openAIModelEnv       = "OPENAI_MODEL"
	langfusePublicKeyEnv = "LANGFUSE_PUBLIC_KEY"
	langfuseSecretKeyEnv = "LANGFUSE_SECRET_KEY"
	langfuseBaseURLEnv   = "LANGFUSE_BASE_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Langfuse LangfuseConfig `yaml:"langfuse"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OpenAIConfig defines how to contact the inference provider.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// LangfuseConfig wires the optional telemetry backend. Tracing degrades to a
// no-op when either key is absent.
type LangfuseConfig struct {
	BaseURL   string `yaml:"baseUrl"`
	PublicKey string `yaml:"publicKey"`
	SecretKey string `yaml:"secretKey"`
}

// Enabled reports whether both telemetry credentials are present.
func (l LangfuseConfig) Enabled() bool {
	return l.PublicKey != "" && l.SecretKey != ""
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A .env file in the working directory is loaded first.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(langfusePublicKeyEnv); v != "" {
		c.Langfuse.PublicKey = v
	}

	if v := os.Getenv(langfuseSecretKeyEnv); v != "" {
		c.Langfuse.SecretKey = v
	}

	if v := os.Getenv(langfuseBaseURLEnv); v != "" {
		c.Langfuse.BaseURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.Langfuse.BaseURL != "" {
		base.Langfuse.BaseURL = override.Langfuse.BaseURL
	}
	if override.Langfuse.PublicKey != "" {
		base.Langfuse.PublicKey = override.Langfuse.PublicKey
	}
	if override.Langfuse.SecretKey != "" {
		base.Langfuse.SecretKey = override.Langfuse.SecretKey
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/responses",
			Model:    "gpt-4.1-mini",
			APIKey:   "",
		},
		Langfuse: LangfuseConfig{
			BaseURL:   "https://cloud.langfuse.com",
			PublicKey: "",
			SecretKey: "",
		},
	}
}
