package config

const (
	defaultListen   = ":8080"
	defaultUpstream = "https://ai.gateway.lovable.dev"
	defaultModel    = "google/gemini-2.5-flash"

	defaultClientTarget = "http://localhost:8080"

	defaultSQLiteFile = "skillpilot.db"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			SQLitePath: defaultSQLiteFile,
		},
		Gateway: GatewayConfig{
			Listen:   defaultListen,
			Upstream: defaultUpstream,
			Model:    defaultModel,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}
