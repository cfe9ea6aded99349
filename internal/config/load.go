package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file; both are overlaid on the
// defaults below. Returns a populated Config struct or an error if
// loading or validation fails.
//
// Environment variables use the KOTOBA_ prefix with underscores standing
// in for nesting, e.g. KOTOBA_SERVER_PORT or KOTOBA_DATABASE_URL.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("study.clicks_to_advance", 3)
	v.SetDefault("study.auto_advance", true)
	v.SetDefault("study.daily_target", 10)
	v.SetDefault("study.history_retention", 30)

	// Optional config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables: KOTOBA_SERVER_PORT -> server.port
	v.SetEnvPrefix("KOTOBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only sees env vars for keys it already knows about, so bind
	// each key explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"study.clicks_to_advance",
		"study.auto_advance",
		"study.daily_target",
		"study.history_retention",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
