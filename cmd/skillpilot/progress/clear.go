package progresscmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tracked roadmaps and completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear progress without --yes")
			}

			return withStore(cmd, func(store progress.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s Cleared all progress\n", cliui.SuccessMark)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting all progress")

	return cmd
}
