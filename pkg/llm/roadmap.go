package llm

// Difficulty levels used by roadmaps, tasks and projects.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Roadmap is a generated learning curriculum for one skill.
type Roadmap struct {
	Skill              string        `json:"skill"`
	Level              string        `json:"level"`
	EstimatedTotalTime string        `json:"estimatedTotalTime"`
	Steps              []RoadmapStep `json:"steps"`
	Projects           []Project     `json:"projects"`
}

// RoadmapStep is one ordered stage of a roadmap.
type RoadmapStep struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Resources   []Resource `json:"resources"`
	Tasks       []Task     `json:"tasks"`
	Completed   bool       `json:"completed"`
}

// Resource is a learning resource link. Type is one of
// "video", "article", "documentation" or "course".
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
	Free  bool   `json:"free"`
}

// Task is a practice task attached to a step.
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Completed   bool   `json:"completed"`
}

// Project is a capstone project suggestion.
type Project struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Difficulty    string   `json:"difficulty"`
	EstimatedTime string   `json:"estimatedTime"`
	Skills        []string `json:"skills"`
}

// Step returns the step with the given id.
func (r *Roadmap) Step(id int) (*RoadmapStep, bool) {
	for i := range r.Steps {
		if r.Steps[i].ID == id {
			return &r.Steps[i], true
		}
	}
	return nil, false
}
