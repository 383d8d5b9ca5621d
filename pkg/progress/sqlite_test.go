package progress_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

func sampleRoadmap(skill string, steps int) llm.Roadmap {
	r := llm.Roadmap{Skill: skill, Level: llm.LevelBeginner, EstimatedTotalTime: "4 weeks"}
	for i := 1; i <= steps; i++ {
		r.Steps = append(r.Steps, llm.RoadmapStep{
			ID:    i,
			Title: "Step",
			Tasks: []llm.Task{
				{ID: 1, Title: skill + " warmup", Difficulty: llm.LevelBeginner},
				{ID: 2, Title: skill + " exercise", Difficulty: llm.LevelIntermediate},
			},
		})
	}
	return r
}

var _ = Describe("SQLiteStore", func() {
	var (
		store *progress.SQLiteStore
		ctx   context.Context
		clock time.Time
	)

	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		var err error
		store, err = progress.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		store.SetClock(tick)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Create and Get", func() {
		It("starts with no completed steps", func() {
			p, err := store.Create(ctx, sampleRoadmap("golang", 3))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeEmpty())
			Expect(p.Skill).To(Equal("golang"))
			Expect(p.TotalSteps).To(Equal(3))
			Expect(p.CurrentStep).To(Equal(0))
			Expect(p.CompletedSteps).To(BeEmpty())

			got, err := store.Get(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Roadmap).To(Equal(p.Roadmap))
			Expect(got.LastActivity).To(BeTemporally("==", p.LastActivity))
		})

		It("returns ErrNotFound for unknown ids", func() {
			_, err := store.Get(ctx, "missing")
			Expect(err).To(MatchError(progress.ErrNotFound))
		})
	})

	Describe("ToggleStep", func() {
		var p *progress.Progress

		BeforeEach(func() {
			var err error
			p, err = store.Create(ctx, sampleRoadmap("rust", 4))
			Expect(err).NotTo(HaveOccurred())
		})

		It("marks steps complete and tracks the current step", func() {
			_, err := store.ToggleStep(ctx, p.ID, 3)
			Expect(err).NotTo(HaveOccurred())
			updated, err := store.ToggleStep(ctx, p.ID, 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.CompletedSteps).To(Equal([]int{1, 3}))
			Expect(updated.CurrentStep).To(Equal(2))
			Expect(updated.LastActivity).To(BeTemporally(">", p.LastActivity))

			stored, err := store.Get(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.CompletedSteps).To(Equal([]int{1, 3}))
			step, ok := stored.Roadmap.Step(3)
			Expect(ok).To(BeTrue())
			Expect(step.Completed).To(BeTrue())
		})

		It("unmarks a completed step", func() {
			_, err := store.ToggleStep(ctx, p.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			updated, err := store.ToggleStep(ctx, p.ID, 2)
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.CompletedSteps).To(BeEmpty())
			Expect(updated.CurrentStep).To(Equal(0))
		})

		It("rejects unknown steps", func() {
			_, err := store.ToggleStep(ctx, p.ID, 99)
			Expect(err).To(MatchError(progress.ErrNotFound))
		})
	})

	Describe("ToggleTask", func() {
		It("records a completed task only when it becomes complete", func() {
			p, err := store.Create(ctx, sampleRoadmap("python", 1))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.ToggleTask(ctx, p.ID, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			updated, err := store.ToggleTask(ctx, p.ID, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Roadmap.Steps[0].Tasks[1].Completed).To(BeFalse())

			tasks, err := store.RecentTasks(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].Skill).To(Equal("python"))
			Expect(tasks[0].TaskTitle).To(Equal("python exercise"))
		})

		It("leaves the task open when logging it fails", func() {
			p, err := store.Create(ctx, sampleRoadmap("python", 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.DropTaskLog()).To(Succeed())

			_, err = store.ToggleTask(ctx, p.ID, 1, 2)
			Expect(err).To(MatchError(ContainSubstring("failed to insert completed task")))

			stored, err := store.Get(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Roadmap.Steps[0].Tasks[1].Completed).To(BeFalse())
			Expect(stored.LastActivity).To(BeTemporally("==", p.LastActivity))
		})

		It("rejects unknown tasks", func() {
			p, err := store.Create(ctx, sampleRoadmap("python", 1))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.ToggleTask(ctx, p.ID, 1, 7)
			Expect(err).To(MatchError(progress.ErrNotFound))
		})
	})

	Describe("List and RecentTasks", func() {
		It("orders progress by most recent activity", func() {
			first, err := store.Create(ctx, sampleRoadmap("go", 2))
			Expect(err).NotTo(HaveOccurred())
			second, err := store.Create(ctx, sampleRoadmap("zig", 2))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.ToggleStep(ctx, first.ID, 1)
			Expect(err).NotTo(HaveOccurred())

			records, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].ID).To(Equal(first.ID))
			Expect(records[1].ID).To(Equal(second.ID))
		})

		It("returns the newest tasks up to the limit", func() {
			for _, title := range []string{"one", "two", "three"} {
				_, err := store.CompleteTask(ctx, "go", title)
				Expect(err).NotTo(HaveOccurred())
			}

			tasks, err := store.RecentTasks(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(2))
			Expect(tasks[0].TaskTitle).To(Equal("three"))
			Expect(tasks[1].TaskTitle).To(Equal("two"))
		})
	})

	Describe("Stats", func() {
		It("is zero when empty", func() {
			stats, err := store.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stats).To(Equal(progress.Stats{}))
		})

		It("summarises progress and tasks", func() {
			a, err := store.Create(ctx, sampleRoadmap("go", 4))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Create(ctx, sampleRoadmap("zig", 3))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.ToggleStep(ctx, a.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.CompleteTask(ctx, "go", "hello world")
			Expect(err).NotTo(HaveOccurred())

			stats, err := store.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Skills).To(Equal(2))
			Expect(stats.TasksCompleted).To(Equal(1))
			Expect(stats.StepsFinished).To(Equal(1))
			// (25 + 0) / 2 rounds up
			Expect(stats.AverageProgress).To(Equal(13))
		})
	})

	Describe("Clear", func() {
		It("removes progress and tasks", func() {
			_, err := store.Create(ctx, sampleRoadmap("go", 2))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.CompleteTask(ctx, "go", "task")
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Clear(ctx)).To(Succeed())

			records, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
			tasks, err := store.RecentTasks(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(BeEmpty())
		})
	})

	It("persists across reopen", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "progress.db")
		s, err := progress.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		p, err := s.Create(ctx, sampleRoadmap("go", 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		reopened, err := progress.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		got, err := reopened.Get(ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Skill).To(Equal("go"))
	})
})

var _ = Describe("Summarize", func() {
	It("treats records without steps as one step", func() {
		stats := progress.Summarize([]*progress.Progress{
			{TotalSteps: 0, CompletedSteps: []int{}},
			{TotalSteps: 2, CompletedSteps: []int{1, 2}},
		}, 0)

		Expect(stats.AverageProgress).To(Equal(50))
	})
})

var _ = Describe("Progress", func() {
	It("computes a rounded percent", func() {
		p := progress.Progress{TotalSteps: 3, CompletedSteps: []int{1}}
		Expect(p.Percent()).To(Equal(33))
		Expect((&progress.Progress{}).Percent()).To(Equal(0))
	})
})
