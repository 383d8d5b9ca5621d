// Package servecmder provides the serve command that runs the tutor gateway.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cmdutil"
	"github.com/shaikhalfiya/skillpilot/gateway"
	"github.com/shaikhalfiya/skillpilot/pkg/config"
)

const serveLongDesc string = `Run the SkillPilot gateway.

The gateway serves the tutor edge functions:
  POST /functions/v1/chat               Stream a tutor reply
  POST /functions/v1/generate-roadmap   Generate a learning roadmap
  POST /functions/v1/generate-mcq       Generate a quiz question

Streamed conversations are recorded in a transcript DAG that can be
inspected under /transcripts. Editing gateway.model in config.toml while
the server runs switches the upstream model without a restart.

Examples:
  skillpilot serve
  skillpilot serve --listen :9000 --model google/gemini-2.5-pro`

const serveShortDesc string = "Run the tutor gateway"

const shutdownTimeout = 10 * time.Second

// flagBindings maps serve flags to config keys.
var flagBindings = map[string]string{
	"listen":   "gateway.listen",
	"upstream": "gateway.upstream",
	"model":    "gateway.model",
	"sqlite":   "storage.sqlite_path",
}

type serveCommander struct {
	listen   string
	upstream string
	model    string
	sqlite   string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := cmdutil.Load(cmd, flagBindings)
			if err != nil {
				return err
			}
			return cmder.run(settings)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", config.DefaultString("gateway.listen"), "Address to listen on")
	cmd.Flags().StringVarP(&cmder.upstream, "upstream", "u", config.DefaultString("gateway.upstream"), "Upstream AI gateway URL")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", config.DefaultString("gateway.model"), "Upstream model")
	cmd.Flags().StringVarP(&cmder.sqlite, "sqlite", "s", config.DefaultString("storage.sqlite_path"), "Path to SQLite database")

	return cmd
}

func (c *serveCommander) run(settings *cmdutil.Settings) error {
	log := settings.Logger
	defer func() { _ = log.Sync() }()

	g, err := gateway.New(gatewayConfig(settings), log)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer g.Close()

	watchModel(settings.Viper, g, log)

	errChan := make(chan error, 1)
	go func() {
		if err := g.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

func gatewayConfig(settings *cmdutil.Settings) gateway.Config {
	cfg := settings.Config
	return gateway.Config{
		ListenAddr:  cfg.Gateway.Listen,
		UpstreamURL: cfg.Gateway.Upstream,
		APIKey:      cfg.Gateway.APIKey,
		Model:       cfg.Gateway.Model,
		DBPath:      settings.SQLitePath(),
	}
}

// modelSetter is the part of the gateway that follows config changes.
type modelSetter interface {
	Model() string
	SetModel(model string)
}

// watchModel swaps the upstream model whenever config.toml changes.
func watchModel(v *viper.Viper, g modelSetter, log *zap.Logger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		applyModelChange(v, g, log, e)
	})
	v.WatchConfig()
}

func applyModelChange(v *viper.Viper, g modelSetter, log *zap.Logger, e fsnotify.Event) {
	model := config.FromViper(v).Gateway.Model
	if model == "" || model == g.Model() {
		return
	}

	log.Info("config changed, switching model",
		zap.String("file", e.Name),
		zap.String("from", g.Model()),
		zap.String("to", model),
	)
	g.SetModel(model)
}
