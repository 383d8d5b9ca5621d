package progresscmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

const recentTaskLimit = 10

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise progress and recently completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store progress.Store) error {
				ctx := cmd.Context()

				stats, err := store.Stats(ctx)
				if err != nil {
					return err
				}
				tasks, err := store.RecentTasks(ctx, recentTaskLimit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Learning dashboard"))
				for _, row := range []struct{ key, value string }{
					{"Skills learning:", strconv.Itoa(stats.Skills)},
					{"Tasks completed:", strconv.Itoa(stats.TasksCompleted)},
					{"Steps finished:", strconv.Itoa(stats.StepsFinished)},
					{"Average progress:", fmt.Sprintf("%d%%", stats.AverageProgress)},
				} {
					fmt.Fprintf(out, "  %-18s %s\n", cliui.KeyStyle.Render(row.key), cliui.ValueStyle.Render(row.value))
				}

				if len(tasks) == 0 {
					fmt.Fprintln(out)
					return nil
				}

				fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Recently completed"))
				for _, t := range tasks {
					fmt.Fprintf(out, "  %s %s %s\n",
						cliui.SuccessMark,
						t.TaskTitle,
						cliui.DimStyle.Render(fmt.Sprintf("(%s, %s)", t.Skill, t.CompletedAt.Local().Format("2006-01-02"))),
					)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}
