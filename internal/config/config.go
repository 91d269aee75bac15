// Package config loads contacts settings from flags, environment variables
// and an optional contacts.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration.
type Config struct {
	DB       string `mapstructure:"db" json:"db" yaml:"db"`
	Driver   string `mapstructure:"driver" json:"driver" yaml:"driver"`
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	Format   string `mapstructure:"format" json:"format" yaml:"format"`
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"db":        "db",
	"driver":    "driver",
	"log_level": "log-level",
	"format":    "format",
}

// Dir returns the per-user directory holding contacts.yaml and the default
// database.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "contacts"), nil
}

// Defaults returns the built-in settings.
func Defaults() Config {
	c := Config{
		DB:       "contacts.db",
		Driver:   "sqlite3",
		LogLevel: "warn",
		Format:   "text",
	}
	if dir, err := Dir(); err == nil {
		c.DB = filepath.Join(dir, "contacts.db")
	}
	return c
}

// Load resolves the configuration. flags may be nil. If configFile is
// non-empty it must exist; otherwise contacts.yaml is looked up in the user
// config directory and the working directory, and a missing file is fine.
func Load(flags *pflag.FlagSet, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	d := Defaults()
	v.SetDefault("db", d.DB)
	v.SetDefault("driver", d.Driver)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("format", d.Format)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("contacts")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("contacts")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Write stores c as YAML at path, creating the parent directory.
func Write(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}
