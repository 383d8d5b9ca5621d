package progresscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

const barWidth = 20

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked roadmaps, most recently active first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store progress.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No roadmaps tracked yet. Start one with \"skillpilot roadmap <skill>\".")
					return nil
				}

				for _, p := range records {
					fmt.Fprintf(out, "  %s %s %3d%%  %s %s\n",
						cliui.NameStyle.Render(p.Skill),
						cliui.ProgressBar(p.Percent(), barWidth),
						p.Percent(),
						cliui.DimStyle.Render(fmt.Sprintf("step %d/%d", p.CurrentStep, p.TotalSteps)),
						cliui.DimStyle.Render(p.ID),
					)
				}
				return nil
			})
		},
	}
}
