package config

// Config is the persistent skillpilot configuration stored as config.toml in
// the config directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version" mapstructure:"version"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Gateway GatewayConfig `toml:"gateway" mapstructure:"gateway"`
	Client  ClientConfig  `toml:"client" mapstructure:"client"`
}

// StorageConfig holds storage settings shared by the gateway and the CLI.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
}

// GatewayConfig holds the tutor gateway settings.
type GatewayConfig struct {
	Listen   string `toml:"listen,omitempty" mapstructure:"listen"`
	Upstream string `toml:"upstream,omitempty" mapstructure:"upstream"`
	APIKey   string `toml:"api_key,omitempty" mapstructure:"api_key"`
	Model    string `toml:"model,omitempty" mapstructure:"model"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// gateway. Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty" mapstructure:"target"`
	Token  string `toml:"token,omitempty" mapstructure:"token"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string)
	secret bool
}

// configKeys is the authoritative map of all supported config keys.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) { c.Storage.SQLitePath = v },
	},
	"gateway.listen": {
		get: func(c *Config) string { return c.Gateway.Listen },
		set: func(c *Config, v string) { c.Gateway.Listen = v },
	},
	"gateway.upstream": {
		get: func(c *Config) string { return c.Gateway.Upstream },
		set: func(c *Config, v string) { c.Gateway.Upstream = v },
	},
	"gateway.api_key": {
		get:    func(c *Config) string { return c.Gateway.APIKey },
		set:    func(c *Config, v string) { c.Gateway.APIKey = v },
		secret: true,
	},
	"gateway.model": {
		get: func(c *Config) string { return c.Gateway.Model },
		set: func(c *Config, v string) { c.Gateway.Model = v },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) { c.Client.Target = v },
	},
	"client.token": {
		get:    func(c *Config) string { return c.Client.Token },
		set:    func(c *Config, v string) { c.Client.Token = v },
		secret: true,
	},
}

// orderedKeys follows the TOML section layout.
var orderedKeys = []string{
	"storage.sqlite_path",
	"gateway.listen",
	"gateway.upstream",
	"gateway.api_key",
	"gateway.model",
	"client.target",
	"client.token",
}
