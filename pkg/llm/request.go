package llm

// ChatRequest is the body of a tutor chat call: the conversation so far plus
// the skill the learner is studying.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Skill    string    `json:"skill"`
}

// RoadmapRequest asks the roadmap function for a curriculum.
type RoadmapRequest struct {
	Skill string `json:"skill"`
}

// QuizRequest asks the quiz function for one multiple-choice question.
type QuizRequest struct {
	Concept string `json:"concept"`
	Skill   string `json:"skill"`
}

// CompletionRequest is an OpenAI-compatible chat completion request sent
// upstream by the gateway.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`

	*Options
}
