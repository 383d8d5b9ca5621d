package progresscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

func newShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a tracked roadmap with its completed steps and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store progress.Store) error {
				p, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				md := cliui.RoadmapMarkdown(&p.Roadmap)
				if !raw {
					md, _ = cliui.RenderMarkdown(md)
				}
				fmt.Fprintln(out, md)

				fmt.Fprintf(out, "  %s %s %d%%  %s %s\n",
					cliui.KeyStyle.Render("Progress:"),
					cliui.ProgressBar(p.Percent(), barWidth),
					p.Percent(),
					cliui.KeyStyle.Render("Last activity:"),
					cliui.ValueStyle.Render(p.LastActivity.Local().Format("2006-01-02 15:04")),
				)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")

	return cmd
}
