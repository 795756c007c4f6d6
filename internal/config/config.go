// Package config loads srcid settings.
//
// Precedence, highest first: command-line flags (applied by the caller),
// SRCID_* environment variables, a .env file in the config directory,
// srcid.yaml in the config directory, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFileName = "srcid"
	configFileType = "yaml"
	envFileName    = ".env"
	envPrefix      = "SRCID"

	KeyDatabase = "database"
	KeyFormat   = "format"
	KeyVerbose  = "verbose"

	DefaultDatabase = "srcid.db"
	DefaultFormat   = "text"
)

// Config holds resolved settings.
type Config struct {
	Database string // SQLite path used by ingest/show/sessions
	Format   string // Output format: text or json
	Verbose  bool

	// File is the config file that was read, empty when none was found.
	File string
}

// DefaultDir returns the per-user config directory, or "" when the
// platform has none.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "srcid")
}

// Load reads configuration from dir. A missing directory, srcid.yaml or
// .env is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	if dir != "" {
		if err := godotenv.Load(filepath.Join(dir, envFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFileName, err)
		}
	}

	v := viper.New()
	v.SetDefault(KeyDatabase, DefaultDatabase)
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyVerbose, false)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	cfg := &Config{}
	if dir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(dir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			cfg.File = v.ConfigFileUsed()
		}
	}

	cfg.Database = v.GetString(KeyDatabase)
	cfg.Format = v.GetString(KeyFormat)
	cfg.Verbose = v.GetBool(KeyVerbose)

	if cfg.Format != "text" && cfg.Format != "json" {
		return nil, fmt.Errorf("config %s: invalid format %q (want text or json)", KeyFormat, cfg.Format)
	}
	return cfg, nil
}
