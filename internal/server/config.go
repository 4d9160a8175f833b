package server

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DevMode bool   `mapstructure:"dev_mode"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Plugin defaults
	v.SetDefault("plugins.genie.endpoints", []string{
		"https://generativelanguage.googleapis.com/v1beta",
		"https://generativelanguage.googleapis.com/v1",
	})
	v.SetDefault("plugins.genie.models", []string{
		"gemini-1.5-flash",
		"gemini-1.5-pro",
		"gemini-2.0-flash",
		"gemini-pro",
	})
	v.SetDefault("plugins.genie.check_timeout", "5s")
	v.SetDefault("plugins.genie.test_timeout", "10s")
	v.SetDefault("plugins.genie.request_timeout", "30s")
	v.SetDefault("plugins.genie.test_prompt", "Hello")
	v.SetDefault("plugins.genie.auto_resolve", true)
	v.SetDefault("plugins.advisor.temperature", 0.7)
	v.SetDefault("plugins.advisor.max_tokens", 2000)
	v.SetDefault("plugins.advisor.timeout", "30s")
	v.SetDefault("plugins.webhook.enabled", true)
	v.SetDefault("plugins.webhook.url", "")
	v.SetDefault("plugins.webhook.timeout", "10s")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("healthgenie")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/healthgenie")
	}

	// Environment variable support: HEALTHGENIE_SERVER_PORT=9090
	v.SetEnvPrefix("HEALTHGENIE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
