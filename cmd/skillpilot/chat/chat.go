// Package chatcmder provides the chat command for an interactive tutor
// session streamed through the SkillPilot gateway.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cmdutil"
	"github.com/shaikhalfiya/skillpilot/pkg/chatstream"
	"github.com/shaikhalfiya/skillpilot/pkg/llm"
	"github.com/shaikhalfiya/skillpilot/pkg/tutor"
)

const chatLongDesc string = `Start an interactive chat with the SkillPilot tutor.

Each message is sent with the whole conversation so far and the tutor's
reply streams to the terminal as it is generated. Press Ctrl+C while a
reply is streaming to stop it; /exit or Ctrl+D quits.

Examples:
  skillpilot chat rust
  skillpilot chat "system design" --target http://localhost:9000`

const chatShortDesc string = "Chat with the AI tutor about a skill"

const exitCommand = "/exit"

var quickQuestions = []string{
	"I'm stuck, help!",
	"What should I learn next?",
	"Suggest a project",
	"Explain this concept",
}

var flagBindings = map[string]string{
	"target": "client.target",
}

// streamer is the part of the tutor client the chat loop needs.
type streamer interface {
	StreamChat(ctx context.Context, req llm.ChatRequest, h chatstream.Handler) error
}

type chatCommander struct {
	target string

	skill  string
	logger *zap.Logger
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat <skill>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdutil.Load(cmd, flagBindings)
			if err != nil {
				return err
			}
			cmder.skill = strings.Join(args, " ")
			cmder.logger = settings.Logger
			defer func() { _ = cmder.logger.Sync() }()

			return cmder.run(cmd.Context(), settings.Client(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cmder.target, "target", "t", "", "SkillPilot gateway URL")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, client streamer, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Learning:"),
		cliui.NameStyle.Render(c.skill),
	)
	fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("Try: "+strings.Join(quickQuestions, " · ")))
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	var messages []llm.Message
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == exitCommand {
			break
		}

		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: input})

		reply, err := c.turn(ctx, client, messages, out)
		if err != nil {
			fmt.Fprintf(out, "\n  %s %v\n\n", cliui.FailMark, err)
			if tutor.IsStatus(err, chatstream.StatusCreditsExhausted) {
				return err
			}
			// Drop the failed message so it can be retried.
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: reply})
		fmt.Fprint(out, "\n\n")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

// turn streams one tutor reply to out. An interrupt stops the stream and
// keeps whatever text already arrived.
func (c *chatCommander) turn(ctx context.Context, client streamer, messages []llm.Message, out io.Writer) (string, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var (
		reply     strings.Builder
		streamErr error
	)

	fmt.Fprint(out, cliui.TutorPrompt)

	err := client.StreamChat(ctx, llm.ChatRequest{Messages: messages, Skill: c.skill}, chatstream.Handler{
		OnDelta: func(text string) {
			reply.WriteString(text)
			fmt.Fprint(out, text)
		},
		OnDone: func() {
			c.logger.Debug("reply complete", zap.Int("bytes", reply.Len()))
		},
		OnError: func(err error) {
			streamErr = err
		},
	})

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, " %s", cliui.DimStyle.Render("[stopped]"))
		if reply.Len() == 0 {
			return "", errors.New("reply cancelled")
		}
		return reply.String(), nil
	case err != nil:
		return "", err
	case streamErr != nil:
		return "", streamErr
	}

	return reply.String(), nil
}
