package gateway

import "time"

// Config is the gateway server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// UpstreamURL is the OpenAI-compatible AI gateway base URL.
	UpstreamURL string

	// APIKey authenticates upstream calls. Requests fail with 500 when unset.
	APIKey string

	// Model is the initial upstream model. It can be swapped at runtime
	// with SetModel.
	Model string

	// DBPath is the path to the SQLite transcript database.
	// Empty keeps transcripts in memory.
	DBPath string

	// HeaderTimeout bounds the wait for upstream response headers.
	// Streamed bodies are not bounded; they end with the client.
	HeaderTimeout time.Duration

	// GenerateTimeout bounds a whole roadmap or quiz generation.
	GenerateTimeout time.Duration
}

const (
	defaultHeaderTimeout   = 2 * time.Minute
	defaultGenerateTimeout = 5 * time.Minute
)

func (c Config) headerTimeout() time.Duration {
	if c.HeaderTimeout > 0 {
		return c.HeaderTimeout
	}
	return defaultHeaderTimeout
}

func (c Config) generateTimeout() time.Duration {
	if c.GenerateTimeout > 0 {
		return c.GenerateTimeout
	}
	return defaultGenerateTimeout
}
