package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS learning_progress (
		id TEXT PRIMARY KEY,
		skill TEXT NOT NULL,
		total_steps INTEGER NOT NULL DEFAULT 0,
		current_step INTEGER NOT NULL DEFAULT 0,
		completed_steps TEXT NOT NULL DEFAULT '[]',
		roadmap TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		last_activity INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS completed_tasks (
		id TEXT PRIMARY KEY,
		skill TEXT NOT NULL,
		task_title TEXT NOT NULL,
		completed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_learning_progress_last_activity ON learning_progress(last_activity);
	CREATE INDEX IF NOT EXISTS idx_completed_tasks_completed_at ON completed_tasks(completed_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, roadmap llm.Roadmap) (*Progress, error) {
	now := s.now()
	p := &Progress{
		ID:             uuid.NewString(),
		Skill:          roadmap.Skill,
		TotalSteps:     len(roadmap.Steps),
		CompletedSteps: completedStepIDs(&roadmap),
		Roadmap:        roadmap,
		StartedAt:      now,
		LastActivity:   now,
	}
	p.CurrentStep = len(p.CompletedSteps)

	steps, roadmapJSON, err := marshalProgress(p)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO learning_progress (id, skill, total_steps, current_step, completed_steps, roadmap, started_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Skill, p.TotalSteps, p.CurrentStep, steps, roadmapJSON, p.StartedAt.UnixNano(), p.LastActivity.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to insert progress: %w", err)
	}

	return p, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Progress, error) {
	return s.get(ctx, s.db, id)
}

func (s *SQLiteStore) get(ctx context.Context, q querier, id string) (*Progress, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, skill, total_steps, current_step, completed_steps, roadmap, started_at, last_activity
		FROM learning_progress WHERE id = ?`, id)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *SQLiteStore) ToggleStep(ctx context.Context, id string, stepID int) (*Progress, error) {
	return s.update(ctx, id, func(_ querier, p *Progress) error {
		step, ok := p.Roadmap.Step(stepID)
		if !ok {
			return fmt.Errorf("step %d: %w", stepID, ErrNotFound)
		}
		step.Completed = !step.Completed
		return nil
	})
}

// ToggleTask flips a task and, when it becomes complete, appends it to the
// completed task log in the same transaction.
func (s *SQLiteStore) ToggleTask(ctx context.Context, id string, stepID, taskID int) (*Progress, error) {
	return s.update(ctx, id, func(q querier, p *Progress) error {
		step, ok := p.Roadmap.Step(stepID)
		if !ok {
			return fmt.Errorf("step %d: %w", stepID, ErrNotFound)
		}
		for i := range step.Tasks {
			if step.Tasks[i].ID != taskID {
				continue
			}
			step.Tasks[i].Completed = !step.Tasks[i].Completed
			if !step.Tasks[i].Completed {
				return nil
			}
			_, err := s.insertCompletedTask(ctx, q, p.Skill, step.Tasks[i].Title)
			return err
		}
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	})
}

// update loads a record, applies mutate to its roadmap and writes back the
// derived step counters, all inside one transaction.
func (s *SQLiteStore) update(ctx context.Context, id string, mutate func(querier, *Progress) error) (*Progress, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(tx, p); err != nil {
		return nil, err
	}

	p.CompletedSteps = completedStepIDs(&p.Roadmap)
	p.CurrentStep = len(p.CompletedSteps)
	p.LastActivity = s.now()

	steps, roadmapJSON, err := marshalProgress(p)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE learning_progress
		SET current_step = ?, completed_steps = ?, roadmap = ?, last_activity = ?
		WHERE id = ?`,
		p.CurrentStep, steps, roadmapJSON, p.LastActivity.UnixNano(), p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit progress: %w", err)
	}

	return p, nil
}

func (s *SQLiteStore) CompleteTask(ctx context.Context, skill, title string) (*CompletedTask, error) {
	return s.insertCompletedTask(ctx, s.db, skill, title)
}

func (s *SQLiteStore) insertCompletedTask(ctx context.Context, q querier, skill, title string) (*CompletedTask, error) {
	t := &CompletedTask{
		ID:          uuid.NewString(),
		Skill:       skill,
		TaskTitle:   title,
		CompletedAt: s.now(),
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO completed_tasks (id, skill, task_title, completed_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Skill, t.TaskTitle, t.CompletedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to insert completed task: %w", err)
	}

	return t, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Progress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, skill, total_steps, current_step, completed_steps, roadmap, started_at, last_activity
		FROM learning_progress ORDER BY last_activity DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	records := []*Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

func (s *SQLiteStore) RecentTasks(ctx context.Context, limit int) ([]*CompletedTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, skill, task_title, completed_at
		FROM completed_tasks ORDER BY completed_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*CompletedTask{}
	for rows.Next() {
		var (
			t           CompletedTask
			completedAt int64
		)
		if err := rows.Scan(&t.ID, &t.Skill, &t.TaskTitle, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completed task: %w", err)
		}
		t.CompletedAt = time.Unix(0, completedAt).UTC()
		tasks = append(tasks, &t)
	}

	return tasks, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var tasks int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed_tasks`).Scan(&tasks); err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	return Summarize(records, tasks), nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"learning_progress", "completed_tasks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalProgress(p *Progress) (string, string, error) {
	steps, err := json.Marshal(p.CompletedSteps)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal completed steps: %w", err)
	}
	roadmap, err := json.Marshal(p.Roadmap)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal roadmap: %w", err)
	}
	return string(steps), string(roadmap), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*Progress, error) {
	var (
		p                   Progress
		steps, roadmap      string
		started, lastActive int64
	)

	err := row.Scan(&p.ID, &p.Skill, &p.TotalSteps, &p.CurrentStep, &steps, &roadmap, &started, &lastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	if err := json.Unmarshal([]byte(steps), &p.CompletedSteps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed steps: %w", err)
	}
	if err := json.Unmarshal([]byte(roadmap), &p.Roadmap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roadmap: %w", err)
	}

	p.StartedAt = time.Unix(0, started).UTC()
	p.LastActivity = time.Unix(0, lastActive).UTC()
	return &p, nil
}
