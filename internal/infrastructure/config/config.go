package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/yast/yast-network-sub000/internal/domain/constants"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
)

// Config backends for interface configurations
const (
	BackendFile  = "file"
	BackendMySQL = "mysql"
)

// Config is a struct that holds application configuration
type Config struct {
	Paths    PathsConfig
	Store    StoreConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Watch    WatchConfig
	Server   ServerConfig
}

// PathsConfig holds the filesystem locations the tool reads and writes
type PathsConfig struct {
	// SysconfigDir empty means it is derived from the distribution
	SysconfigDir string
	OSRelease    string
	SysfsNetDir  string
	UdevRules    string
	BackupDir    string
	BackupKeep   int
}

// StoreConfig selects where interface configurations live
type StoreConfig struct {
	Backend string
}

// DatabaseConfig is a struct that holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// EngineConfig holds reconciliation engine settings
type EngineConfig struct {
	Arch           string
	MaxBondSlaves  int
	CommandTimeout time.Duration
	UdevRetries    int
	UdevRetryDelay time.Duration
}

// WatchConfig holds the periodic reconcile settings of serve mode
type WatchConfig struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
}

// ServerConfig holds the metrics and health endpoint settings
type ServerConfig struct {
	Port string
}

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader is an implementation that loads configuration from environment variables
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load loads configuration from environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	config := &Config{
		Paths: PathsConfig{
			SysconfigDir: getEnvOrDefault("SYSCONFIG_DIR", ""),
			OSRelease:    getEnvOrDefault("OS_RELEASE_FILE", constants.OSReleaseFile),
			SysfsNetDir:  getEnvOrDefault("SYSFS_NET_DIR", constants.SysClassNet),
			UdevRules:    getEnvOrDefault("UDEV_RULES_FILE", constants.UdevPersistentNetRules),
			BackupDir:    getEnvOrDefault("UDEV_BACKUP_DIR", constants.DefaultBackupDir),
			BackupKeep:   getEnvIntOrDefault("UDEV_BACKUP_KEEP", 10),
		},
		Store: StoreConfig{
			Backend: getEnvOrDefault("CONFIG_BACKEND", BackendFile),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", constants.DefaultDBHost),
			Port:         getEnvOrDefault("DB_PORT", constants.DefaultDBPort),
			User:         getEnvOrDefault("DB_USER", "root"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			Database:     getEnvOrDefault("DB_NAME", constants.DefaultDBName),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDurationOrDefault("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Engine: EngineConfig{
			Arch:           getEnvOrDefault("ARCH", runtime.GOARCH),
			MaxBondSlaves:  getEnvIntOrDefault("MAX_BOND_SLAVES", constants.MaxBondSlaves),
			CommandTimeout: getEnvDurationOrDefault("COMMAND_TIMEOUT", constants.DefaultCommandTimeout*time.Second),
			UdevRetries:    getEnvIntOrDefault("UDEV_RETRIES", 3),
			UdevRetryDelay: getEnvDurationOrDefault("UDEV_RETRY_DELAY", time.Second),
		},
		Watch: WatchConfig{
			Interval:    getEnvDurationOrDefault("WATCH_INTERVAL", 30*time.Second),
			MaxInterval: getEnvDurationOrDefault("WATCH_MAX_INTERVAL", 5*time.Minute),
			Multiplier:  getEnvFloatOrDefault("WATCH_BACKOFF_MULTIPLIER", 2.0),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("METRICS_PORT", constants.DefaultMetricsPort),
		},
	}

	// Validate configuration
	if err := l.validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validate validates the configuration
func (l *EnvironmentConfigLoader) validate(config *Config) error {
	switch config.Store.Backend {
	case BackendFile:
		if config.Paths.SysconfigDir == "" && config.Paths.OSRelease == "" {
			return errors.NewValidationError("neither sysconfig directory nor os-release file configured", nil)
		}
	case BackendMySQL:
		if config.Database.Host == "" {
			return errors.NewValidationError("database host not configured", nil)
		}
		if config.Database.Port == "" {
			return errors.NewValidationError("database port not configured", nil)
		}
		if config.Database.User == "" {
			return errors.NewValidationError("database user not configured", nil)
		}
		if config.Database.Database == "" {
			return errors.NewValidationError("database name not configured", nil)
		}
	default:
		return errors.NewValidationError("unknown config backend: "+config.Store.Backend, nil)
	}

	if config.Paths.UdevRules == "" {
		return errors.NewValidationError("udev rules file not configured", nil)
	}
	if config.Engine.MaxBondSlaves <= 0 {
		return errors.NewValidationError("invalid max bond slave count", nil)
	}
	if config.Engine.UdevRetries < 1 {
		return errors.NewValidationError("invalid udev retry count", nil)
	}
	if config.Watch.Interval <= 0 {
		return errors.NewValidationError("invalid watch interval", nil)
	}
	if config.Server.Port == "" {
		return errors.NewValidationError("metrics port not configured", nil)
	}

	return nil
}

// Environment variable helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
