package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Study    StudyConfig    `mapstructure:"study" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// StudyConfig contains the tunable behavior of the study engine.
type StudyConfig struct {
	// ClicksToAdvance is the flip-count threshold at which a study session
	// auto-advances to the next card instead of flipping again.
	ClicksToAdvance int `mapstructure:"clicks_to_advance" validate:"required,gte=1,lte=10"`

	// AutoAdvance enables the click-counting auto-advance behavior.
	AutoAdvance bool `mapstructure:"auto_advance"`

	// DailyTarget is the default daily-words quota for new sessions.
	DailyTarget int `mapstructure:"daily_target" validate:"required,oneof=5 10 15 20"`

	// HistoryRetention caps how many past daily sessions are kept.
	HistoryRetention int `mapstructure:"history_retention" validate:"required,gte=1,lte=365"`
}
