package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/voteguard/voteguard-node/db"
	"github.com/voteguard/voteguard-node/internal"
)

const (
	defaultAPIHost         = "0.0.0.0"
	defaultAPIPort         = 9090
	defaultLogLevel        = "info"
	defaultLogOutput       = "stdout"
	defaultDatadir         = ".voteguard" // Will be prefixed with user's home directory
	defaultDBType          = db.TypePebble
	defaultMonitorInterval = 10 * time.Second
	logBufferCapacity      = 1000
)

// Version is the build version, set at build time with -ldflags
var Version = internal.Version

// Config holds the application configuration
type Config struct {
	API     APIConfig
	Log     LogConfig
	Monitor MonitorConfig
	Datadir string
	DBType  string `mapstructure:"dbtype"`
}

// APIConfig holds the API-specific configuration
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// MonitorConfig holds the deadline monitor configuration
type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Disabled bool          `mapstructure:"disabled"`
}

// loadConfig loads configuration from flags, environment variables, and defaults
func loadConfig() (*Config, error) {
	v := viper.New()

	// Get user's home directory for default datadir
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	defaultDatadirPath := filepath.Join(userHomeDir, defaultDatadir)

	v.SetDefault("api.host", defaultAPIHost)
	v.SetDefault("api.port", defaultAPIPort)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("monitor.interval", defaultMonitorInterval)
	v.SetDefault("monitor.disabled", false)
	v.SetDefault("datadir", defaultDatadirPath)
	v.SetDefault("dbtype", defaultDBType)

	// Configure flags
	flag.StringP("api.host", "a", defaultAPIHost, "API host")
	flag.IntP("api.port", "p", defaultAPIPort, "API port")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error, fatal)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
	flag.DurationP("monitor.interval", "m", defaultMonitorInterval, "deadline monitor scan interval (i.e 10s or 1m)")
	flag.Bool("monitor.disabled", false, "disable the election deadline monitor")
	flag.StringP("datadir", "d", defaultDatadirPath, "data directory for database files")
	flag.String("dbtype", defaultDBType, fmt.Sprintf("database type (%s or %s)", db.TypePebble, db.TypeInMemory))

	// Configure usage information
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "voteguard-node v%s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: voteguard-node [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  except for dashes (-) and dots (.) which are replaced by underscores (_).\n")
		fmt.Fprintf(os.Stderr, "  For example, VOTEGUARD_API_PORT or VOTEGUARD_LOG_LEVEL\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Start with default settings\n")
		fmt.Fprintf(os.Stderr, "  voteguard-node\n\n")
		fmt.Fprintf(os.Stderr, "  # Start on a custom port with debug logging\n")
		fmt.Fprintf(os.Stderr, "  voteguard-node --api.port=8080 --log.level=debug\n")
	}

	// Parse flags
	flag.CommandLine.SortFlags = false
	flag.Parse()

	// Configure Viper to use environment variables
	v.SetEnvPrefix("VOTEGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind flags to Viper
	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.DBType != db.TypePebble && cfg.DBType != db.TypeInMemory {
		return fmt.Errorf("invalid dbtype %q, expected %s or %s", cfg.DBType, db.TypePebble, db.TypeInMemory)
	}
	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", cfg.API.Port)
	}
	if cfg.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}
	return nil
}
