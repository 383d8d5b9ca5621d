// Package cmdutil loads the settings shared by skillpilot subcommands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/pkg/config"
	"github.com/shaikhalfiya/skillpilot/pkg/logger"
	"github.com/shaikhalfiya/skillpilot/pkg/progress"
	"github.com/shaikhalfiya/skillpilot/pkg/tutor"
)

// Global flag names.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
)

// AddGlobalFlags registers the persistent flags every subcommand reads.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP(FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(FlagConfigDir, "", "Override the config directory (default ~/.skillpilot)")
}

// Settings is the effective configuration for one command invocation.
type Settings struct {
	Dir    string
	Config *config.Config
	Viper  *viper.Viper
	Debug  bool
	Logger *zap.Logger
}

// Load resolves the config directory and layers config.toml, environment
// and any flags bound on cmd.
func Load(cmd *cobra.Command, bindings map[string]string) (*Settings, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)
	debug, _ := cmd.Flags().GetBool(FlagDebug)

	dir, err := config.Dir(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	v, err := config.InitViper(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := config.BindFlags(v, cmd, bindings); err != nil {
		return nil, err
	}

	return &Settings{
		Dir:    dir,
		Config: config.FromViper(v),
		Viper:  v,
		Debug:  debug,
		Logger: logger.NewLogger(debug),
	}, nil
}

// SQLitePath is the database shared by progress and transcripts.
func (s *Settings) SQLitePath() string {
	return config.StoragePath(s.Dir, s.Config.Storage.SQLitePath)
}

// OpenProgress opens the progress store.
func (s *Settings) OpenProgress() (*progress.SQLiteStore, error) {
	store, err := progress.NewSQLiteStore(s.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("opening progress store: %w", err)
	}
	return store, nil
}

// Client returns a tutor client for the configured gateway.
func (s *Settings) Client() *tutor.Client {
	return tutor.NewClient(s.Config.Client.Target, s.Config.Client.Token, s.Logger)
}
