package cliui

import (
	"fmt"
	"strings"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

// RoadmapMarkdown lays a roadmap out as markdown for RenderMarkdown.
// Completed steps and tasks are checked.
func RoadmapMarkdown(r *llm.Roadmap) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s roadmap\n\n", r.Skill)
	if r.Level != "" || r.EstimatedTotalTime != "" {
		fmt.Fprintf(&b, "*%s* · %s\n\n", r.Level, r.EstimatedTotalTime)
	}

	for _, s := range r.Steps {
		fmt.Fprintf(&b, "## %s %d. %s\n\n", checkbox(s.Completed), s.ID, s.Title)
		if s.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Description)
		}
		if s.Duration != "" {
			fmt.Fprintf(&b, "Duration: %s\n\n", s.Duration)
		}

		for _, res := range s.Resources {
			fmt.Fprintf(&b, "- [%s](%s) (%s)\n", res.Title, res.URL, res.Type)
		}
		if len(s.Resources) > 0 {
			b.WriteString("\n")
		}

		for _, t := range s.Tasks {
			fmt.Fprintf(&b, "- %s task %d: **%s** (%s)\n", checkbox(t.Completed), t.ID, t.Title, t.Difficulty)
		}
		if len(s.Tasks) > 0 {
			b.WriteString("\n")
		}
	}

	if len(r.Projects) > 0 {
		b.WriteString("## Projects\n\n")
		for _, p := range r.Projects {
			fmt.Fprintf(&b, "- **%s** (%s, %s): %s\n", p.Title, p.Difficulty, p.EstimatedTime, p.Description)
		}
	}

	return b.String()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
