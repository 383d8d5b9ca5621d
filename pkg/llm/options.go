package llm

// Options contains model inference parameters.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty"`       // Nucleus sampling threshold
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Max tokens to generate
	Stop        []string `json:"stop,omitempty"`        // Stop generation at these sequences
}

// WithTemperature returns Options with only the temperature set.
func WithTemperature(t float64) *Options {
	return &Options{Temperature: &t}
}
