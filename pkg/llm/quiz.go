package llm

// Quiz is a single multiple-choice question about a concept.
type Quiz struct {
	Question     string        `json:"question"`
	Options      []string      `json:"options"`
	CorrectIndex int           `json:"correctIndex"`
	Explanation  string        `json:"explanation"`
	Resource     *QuizResource `json:"resource,omitempty"`
}

// QuizResource points at a free resource about the quizzed concept.
type QuizResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// IsCorrect reports whether the chosen option index is the right answer.
func (q *Quiz) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}
