// Package configcmder provides the config command for managing persistent
// skillpilot configuration.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/pkg/config"
)

const configLongDesc string = `Manage persistent skillpilot configuration.

Configuration is stored as config.toml in the config directory
(~/.skillpilot unless --config-dir is given) and provides default values
for command flags. SKILLPILOT_* environment variables override the file
and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path,
  gateway.listen, gateway.upstream, gateway.api_key, gateway.model,
  client.target, client.token

Examples:
  skillpilot config set gateway.api_key sk-...
  skillpilot config get gateway.model
  skillpilot config list`

const configShortDesc string = "Manage persistent skillpilot configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func newConfiger(cmd *cobra.Command) (*config.Configer, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}
