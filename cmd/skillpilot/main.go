// Command skillpilot is the SkillPilot learning assistant: an AI tutor
// gateway plus a terminal client for chat, roadmaps, quizzes and progress.
package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/shaikhalfiya/skillpilot/cmd/skillpilot/chat"
	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cmdutil"
	configcmder "github.com/shaikhalfiya/skillpilot/cmd/skillpilot/config"
	progresscmder "github.com/shaikhalfiya/skillpilot/cmd/skillpilot/progress"
	quizcmder "github.com/shaikhalfiya/skillpilot/cmd/skillpilot/quiz"
	roadmapcmder "github.com/shaikhalfiya/skillpilot/cmd/skillpilot/roadmap"
	servecmder "github.com/shaikhalfiya/skillpilot/cmd/skillpilot/serve"
)

const skillpilotLongDesc string = `SkillPilot is an AI learning assistant.

Run the tutor gateway, then learn from the terminal:
  skillpilot serve               Run the gateway
  skillpilot roadmap <skill>     Generate and track a learning roadmap
  skillpilot chat <skill>        Chat with the tutor
  skillpilot quiz <concept>      Answer a quick multiple choice question
  skillpilot progress            Check off steps and tasks
  skillpilot config              Manage configuration`

const skillpilotShortDesc string = "SkillPilot - AI learning assistant"

func newSkillPilotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "skillpilot",
		Short:        skillpilotShortDesc,
		Long:         skillpilotLongDesc,
		SilenceUsage: true,
	}

	cmdutil.AddGlobalFlags(cmd)

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(roadmapcmder.NewRoadmapCmd())
	cmd.AddCommand(quizcmder.NewQuizCmd())
	cmd.AddCommand(progresscmder.NewProgressCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}

func main() {
	if err := newSkillPilotCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
