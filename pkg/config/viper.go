package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SKILLPILOT"

// InitViper creates a *viper.Viper with defaults registered, config.toml read
// from the resolved config directory (if present) and SKILLPILOT_* environment
// variables bound, e.g. SKILLPILOT_GATEWAY_API_KEY.
//
// Precedence, highest first: bound flags, environment, config file, defaults.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	dir, err := Dir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// WatchConfig needs a file name even before the file exists.
		v.SetConfigFile(filepath.Join(dir, configFile))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materialises the effective configuration.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{Version: v.GetInt("version")}
	for _, key := range orderedKeys {
		configKeys[key].set(cfg, v.GetString(key))
	}
	return cfg
}

// BindFlags binds already-registered flags to config keys. The map goes from
// flag name to dotted key. Unknown flags are skipped.
func BindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) error {
	for name, key := range flags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// DefaultString returns the default for a dotted key.
func DefaultString(key string) string {
	info, ok := configKeys[key]
	if !ok {
		return ""
	}
	return info.get(NewDefaultConfig())
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, key := range orderedKeys {
		v.SetDefault(key, configKeys[key].get(d))
	}
}
