package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose  bool           `mapstructure:"verbose"`
	Config   string         `mapstructure:"config"`
	Snapshot SnapshotConfig `mapstructure:"snapshot" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SnapshotConfig holds the persisted snapshot settings.
type SnapshotConfig struct {
	File   string `mapstructure:"file" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
	// Watch enables reloading when the snapshot changes on disk.
	Watch bool `mapstructure:"watch"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}
