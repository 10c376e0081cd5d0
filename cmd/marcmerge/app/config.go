package app

import (
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/marcmerge/pkg/errors"
)

// EnvPrefix prefixes environment variables read by viper (MARCMERGE_FORMAT, ...).
const EnvPrefix = "MARCMERGE"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Merge settings
	MergeConfig string
	Concurrency int

	// Logging configuration. LogLevel is the explicit level from a flag or
	// the config file; envLogLevel comes from LOG_LEVEL and ranks below -v/-q.
	LogLevel    string
	LogFormat   string
	LogOutput   string
	envLogLevel string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or ~/.marcmerge.yaml and ./.marcmerge.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("format", "")
	v.SetDefault("merge_config", "")
	v.SetDefault("concurrency", runtime.GOMAXPROCS(0))
	v.SetDefault("no_color", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapIO("read", configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".marcmerge")
		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	config := &Config{
		NoColor:     v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:      v.GetString("format"),
		ConfigFile:  v.ConfigFileUsed(),
		MergeConfig: v.GetString("merge_config"),
		Concurrency: v.GetInt("concurrency"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   firstNonEmpty(v.GetString("log_format"), getEnvOrDefault("LOG_FORMAT", "auto")),
		LogOutput:   firstNonEmpty(v.GetString("log_output"), getEnvOrDefault("LOG_OUTPUT", "stderr")),
		envLogLevel: os.Getenv("LOG_LEVEL"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return &errors.ValidationError{Field: "concurrency", Value: c.Concurrency, Message: "must be at least 1"}
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
