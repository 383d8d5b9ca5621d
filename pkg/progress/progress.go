// Package progress records learning progress through generated roadmaps and
// the practice tasks a learner has finished.
package progress

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

// ErrNotFound is returned when a progress record or step does not exist.
var ErrNotFound = errors.New("not found")

// Progress tracks one learner's walk through a roadmap.
type Progress struct {
	ID             string      `json:"id"`
	Skill          string      `json:"skill"`
	TotalSteps     int         `json:"total_steps"`
	CurrentStep    int         `json:"current_step"`
	CompletedSteps []int       `json:"completed_steps"`
	Roadmap        llm.Roadmap `json:"roadmap"`
	StartedAt      time.Time   `json:"started_at"`
	LastActivity   time.Time   `json:"last_activity"`
}

// Percent is the share of steps completed, rounded to a whole percent.
func (p *Progress) Percent() int {
	if p.TotalSteps == 0 {
		return 0
	}
	return int(math.Round(float64(len(p.CompletedSteps)) / float64(p.TotalSteps) * 100))
}

// CompletedTask is a practice task the learner marked done.
type CompletedTask struct {
	ID          string    `json:"id"`
	Skill       string    `json:"skill"`
	TaskTitle   string    `json:"task_title"`
	CompletedAt time.Time `json:"completed_at"`
}

// Stats summarises the dashboard.
type Stats struct {
	Skills          int `json:"skills"`
	TasksCompleted  int `json:"tasks_completed"`
	StepsFinished   int `json:"steps_finished"`
	AverageProgress int `json:"average_progress"`
}

// Store persists progress and completed tasks.
type Store interface {
	// Create starts tracking a freshly generated roadmap.
	Create(ctx context.Context, roadmap llm.Roadmap) (*Progress, error)

	// Get returns the progress record with the given id.
	Get(ctx context.Context, id string) (*Progress, error)

	// ToggleStep flips the completion of a roadmap step.
	ToggleStep(ctx context.Context, id string, stepID int) (*Progress, error)

	// ToggleTask flips the completion of a task inside a step. Completing
	// a task also records it as a CompletedTask.
	ToggleTask(ctx context.Context, id string, stepID, taskID int) (*Progress, error)

	// CompleteTask records a finished task.
	CompleteTask(ctx context.Context, skill, title string) (*CompletedTask, error)

	// List returns every progress record, most recently active first.
	List(ctx context.Context) ([]*Progress, error)

	// RecentTasks returns up to limit completed tasks, newest first.
	RecentTasks(ctx context.Context, limit int) ([]*CompletedTask, error)

	// Stats summarises all records.
	Stats(ctx context.Context) (*Stats, error)

	// Clear removes all progress and completed tasks.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// Summarize computes dashboard statistics. Records without steps count as
// having one step so they pull the average down rather than dividing by zero.
func Summarize(records []*Progress, tasks int) *Stats {
	s := &Stats{Skills: len(records), TasksCompleted: tasks}
	if len(records) == 0 {
		return s
	}

	var sum float64
	for _, p := range records {
		done := len(p.CompletedSteps)
		s.StepsFinished += done

		total := p.TotalSteps
		if total == 0 {
			total = 1
		}
		sum += float64(done) / float64(total) * 100
	}

	s.AverageProgress = int(math.Round(sum / float64(len(records))))
	return s
}

// completedStepIDs returns ids of completed steps in roadmap order.
func completedStepIDs(r *llm.Roadmap) []int {
	ids := []int{}
	for _, s := range r.Steps {
		if s.Completed {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
