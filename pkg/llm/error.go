// Package llm provides the wire types shared by the SkillPilot tutor client,
// the gateway and the upstream OpenAI-compatible chat completion API.
package llm

// ErrorResponse is the JSON error body returned by the gateway functions.
type ErrorResponse struct {
	Error string `json:"error"`
}
