package llm

// ConversationTurn is one completed tutor exchange: the history that was sent
// and the reply that was streamed back.
type ConversationTurn struct {
	Skill    string    `json:"skill"`
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Reply    Message   `json:"reply"`
}
