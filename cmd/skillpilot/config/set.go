package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in config.toml, creating the
file if needed. A running "skillpilot serve" picks up gateway.model
changes without a restart.

Examples:
  skillpilot config set gateway.api_key sk-...
  skillpilot config set gateway.model google/gemini-2.5-pro
  skillpilot config set client.target http://192.168.1.42:8080`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             setShortDesc,
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], args[1])
		},
	}
}

func runSet(cmd *cobra.Command, key, value string) error {
	if !config.IsValidConfigKey(key) {
		return unknownKey(key)
	}

	cfger, err := newConfiger(cmd)
	if err != nil {
		return err
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Set %s = %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(config.Redact(key, value)),
	)
	return nil
}
