package progresscmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

func newCompleteStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-step <id> <step>",
		Short: "Toggle a roadmap step between done and not done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stepID, err := parseID("step", args[1])
			if err != nil {
				return err
			}

			return withStore(cmd, func(store progress.Store) error {
				p, err := store.ToggleStep(cmd.Context(), args[0], stepID)
				if err != nil {
					return err
				}

				step, _ := p.Roadmap.Step(stepID)
				printToggle(cmd.OutOrStdout(), step.Completed, fmt.Sprintf("Step %d: %s", step.ID, step.Title))
				printPercent(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func newCompleteTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-task <id> <step> <task>",
		Short: "Toggle a practice task between done and not done",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			stepID, err := parseID("step", args[1])
			if err != nil {
				return err
			}
			taskID, err := parseID("task", args[2])
			if err != nil {
				return err
			}

			return withStore(cmd, func(store progress.Store) error {
				p, err := store.ToggleTask(cmd.Context(), args[0], stepID, taskID)
				if err != nil {
					return err
				}

				step, _ := p.Roadmap.Step(stepID)
				for _, t := range step.Tasks {
					if t.ID == taskID {
						printToggle(cmd.OutOrStdout(), t.Completed, fmt.Sprintf("Task %d: %s", t.ID, t.Title))
					}
				}
				return nil
			})
		},
	}
}

func printToggle(w io.Writer, done bool, label string) {
	if done {
		fmt.Fprintf(w, "  %s %s marked done\n", cliui.SuccessMark, label)
		return
	}
	fmt.Fprintf(w, "  %s %s marked not done\n", cliui.DimStyle.Render("○"), label)
}

func printPercent(w io.Writer, p *progress.Progress) {
	fmt.Fprintf(w, "  %s %s %d%%\n",
		cliui.NameStyle.Render(p.Skill),
		cliui.ProgressBar(p.Percent(), barWidth),
		p.Percent(),
	)
}
