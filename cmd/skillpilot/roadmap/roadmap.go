// Package roadmapcmder provides the roadmap command that generates a
// learning roadmap and starts tracking progress through it.
package roadmapcmder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cmdutil"
	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

const roadmapLongDesc string = `Generate a learning roadmap for a skill.

Asks the gateway for a step by step curriculum with resources, practice
tasks and capstone projects, prints it, and records a progress entry so
steps and tasks can be checked off with "skillpilot progress".

Examples:
  skillpilot roadmap rust
  skillpilot roadmap "machine learning" --target http://localhost:9000`

const roadmapShortDesc string = "Generate a learning roadmap"

var flagBindings = map[string]string{
	"target": "client.target",
}

type roadmapCommander struct {
	target string
	raw    bool
}

func NewRoadmapCmd() *cobra.Command {
	cmder := &roadmapCommander{}

	cmd := &cobra.Command{
		Use:   "roadmap <skill>",
		Short: roadmapShortDesc,
		Long:  roadmapLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdutil.Load(cmd, flagBindings)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd, settings, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.target, "target", "t", "", "SkillPilot gateway URL")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print markdown without terminal styling")

	return cmd
}

func (c *roadmapCommander) run(ctx context.Context, cmd *cobra.Command, settings *cmdutil.Settings, skill string) error {
	log := settings.Logger
	defer func() { _ = log.Sync() }()

	skill = strings.TrimSpace(skill)
	if skill == "" {
		return errors.New("skill must not be empty")
	}

	store, err := settings.OpenProgress()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	client := settings.Client()

	var roadmap *llm.Roadmap
	err = cliui.Step(out, fmt.Sprintf("Generating %s roadmap", skill), func() error {
		var err error
		roadmap, err = client.GenerateRoadmap(ctx, skill)
		return err
	})
	if err != nil {
		return err
	}

	p, err := store.Create(ctx, *roadmap)
	if err != nil {
		return err
	}
	log.Debug("tracking roadmap", zap.String("progress_id", p.ID), zap.Int("steps", p.TotalSteps))

	md := cliui.RoadmapMarkdown(roadmap)
	if !c.raw {
		// Fall back to plain markdown if the renderer fails.
		md, _ = cliui.RenderMarkdown(md)
	}
	fmt.Fprintln(out, md)

	fmt.Fprintf(out, "  %s %s %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render("Tracking progress as"),
		cliui.NameStyle.Render(p.ID),
	)
	return nil
}
