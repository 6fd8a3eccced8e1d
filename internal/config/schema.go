package config

import "github.com/zkjiang/autoabstract/internal/abstract"

// Config holds autoabstract configuration.
// Stored at: {home}/config.yaml
type Config struct {
	OpenRouter OpenRouterCfg `mapstructure:"openrouter" yaml:"openrouter"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
}

// OpenRouterCfg configures the completion endpoint.
type OpenRouterCfg struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`     // API key (supports ${ENV_VAR} syntax)
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`   // Endpoint base URL
	Model    string `mapstructure:"model" yaml:"model"`         // Model name
	Referer  string `mapstructure:"referer" yaml:"referer"`     // HTTP-Referer attribution header
	AppTitle string `mapstructure:"app_title" yaml:"app_title"` // X-Title attribution header
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OpenRouter: OpenRouterCfg{
			APIKey:   "${OPENROUTER_API_KEY}",
			BaseURL:  abstract.OpenRouterBaseURL,
			Model:    abstract.DefaultModel,
			Referer:  abstract.DefaultReferer,
			AppTitle: abstract.DefaultAppTitle,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8421,
		},
	}
}

// ExtractorConfig converts the config into the extraction client's settings,
// resolving ${ENV_VAR} references in the API key.
func (c *Config) ExtractorConfig() abstract.Config {
	return abstract.Config{
		APIKey:   ResolveEnvVars(c.OpenRouter.APIKey),
		BaseURL:  c.OpenRouter.BaseURL,
		Model:    c.OpenRouter.Model,
		Referer:  c.OpenRouter.Referer,
		AppTitle: c.OpenRouter.AppTitle,
	}
}
