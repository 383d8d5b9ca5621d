// Package progresscmder provides the progress command for inspecting and
// updating tracked roadmaps.
package progresscmder

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cmdutil"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
)

const progressLongDesc string = `Inspect and update learning progress.

Every roadmap generated with "skillpilot roadmap" is tracked by id. Steps
and tasks toggle between done and not done; finishing a task also records
it in the completed task history shown by "progress stats".

Examples:
  skillpilot progress list
  skillpilot progress show 1f0c9a4e-...
  skillpilot progress complete-step 1f0c9a4e-... 2
  skillpilot progress complete-task 1f0c9a4e-... 2 1
  skillpilot progress stats
  skillpilot progress clear --yes`

const progressShortDesc string = "Inspect and update learning progress"

var flagBindings = map[string]string{
	"sqlite": "storage.sqlite_path",
}

func NewProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: progressShortDesc,
		Long:  progressLongDesc,
	}

	cmd.PersistentFlags().StringP("sqlite", "s", "", "Path to SQLite database")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newCompleteStepCmd())
	cmd.AddCommand(newCompleteTaskCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

// withStore opens the progress store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(store progress.Store) error) error {
	settings, err := cmdutil.Load(cmd, flagBindings)
	if err != nil {
		return err
	}
	defer func() { _ = settings.Logger.Sync() }()

	store, err := settings.OpenProgress()
	if err != nil {
		return err
	}
	defer store.Close()

	err = fn(store)
	if errors.Is(err, progress.ErrNotFound) {
		return fmt.Errorf("no such progress entry: %w", err)
	}
	return err
}

func parseID(name, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", name, arg)
	}
	return id, nil
}
