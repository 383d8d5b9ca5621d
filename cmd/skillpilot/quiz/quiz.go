// Package quizcmder provides the quiz command: one multiple choice question
// about a concept, answered interactively.
package quizcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cliui"
	"github.com/shaikhalfiya/skillpilot/cmd/skillpilot/cmdutil"
	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

const quizLongDesc string = `Test your understanding of a concept.

Generates one multiple choice question about the concept, reads your
answer from stdin and explains the correct option with a free resource to
read next.

Examples:
  skillpilot quiz "borrow checker" --skill rust
  skillpilot quiz closures --skill javascript`

const quizShortDesc string = "Answer a multiple choice question about a concept"

var flagBindings = map[string]string{
	"target": "client.target",
}

type quizCommander struct {
	skill  string
	target string
}

func NewQuizCmd() *cobra.Command {
	cmder := &quizCommander{}

	cmd := &cobra.Command{
		Use:   "quiz <concept>",
		Short: quizShortDesc,
		Long:  quizLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdutil.Load(cmd, flagBindings)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd, settings, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.skill, "skill", "k", "", "Skill the concept belongs to")
	cmd.Flags().StringVarP(&cmder.target, "target", "t", "", "SkillPilot gateway URL")
	_ = cmd.MarkFlagRequired("skill")

	return cmd
}

func (c *quizCommander) run(ctx context.Context, cmd *cobra.Command, settings *cmdutil.Settings, concept string) error {
	defer func() { _ = settings.Logger.Sync() }()

	out := cmd.OutOrStdout()
	client := settings.Client()

	var quiz *llm.Quiz
	err := cliui.Step(out, fmt.Sprintf("Writing a question about %s", concept), func() error {
		var err error
		quiz, err = client.GenerateQuiz(ctx, concept, c.skill)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render(quiz.Question))
	for i, opt := range quiz.Options {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%d.", i+1)), opt)
	}
	fmt.Fprintln(out)

	choice, err := readChoice(cmd.InOrStdin(), out, len(quiz.Options))
	if err != nil {
		return err
	}

	printResult(out, quiz, choice)
	return nil
}

// readChoice prompts until a valid 1-based option number is entered and
// returns it as a 0-based index.
func readChoice(in io.Reader, out io.Writer, n int) (int, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "  %s ", cliui.KeyStyle.Render(fmt.Sprintf("Your answer [1-%d]:", n)))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, fmt.Errorf("reading answer: %w", err)
			}
			return 0, io.ErrUnexpectedEOF
		}

		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintf(out, "  %s\n", cliui.WarnStyle.Render(fmt.Sprintf("Enter a number between 1 and %d.", n)))
	}
}

func printResult(out io.Writer, quiz *llm.Quiz, choice int) {
	fmt.Fprintln(out)
	if quiz.IsCorrect(choice) {
		fmt.Fprintf(out, "  %s Correct!\n", cliui.SuccessMark)
	} else {
		fmt.Fprintf(out, "  %s Not quite. The answer is %d. %s\n",
			cliui.FailMark, quiz.CorrectIndex+1, quiz.Options[quiz.CorrectIndex])
	}

	if quiz.Explanation != "" {
		fmt.Fprintf(out, "\n  %s\n", quiz.Explanation)
	}
	if r := quiz.Resource; r != nil && r.URL != "" {
		fmt.Fprintf(out, "\n  %s %s %s\n",
			cliui.KeyStyle.Render("Learn more:"),
			r.Title,
			cliui.DimStyle.Render(r.URL),
		)
	}
	fmt.Fprintln(out)
}
