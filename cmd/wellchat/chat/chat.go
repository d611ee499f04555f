// Package chatcmder provides the chat command for an interactive
// conversation with the assistant.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wellchat/pkg/assistant"
	"github.com/papercomputeco/wellchat/pkg/cliui"
	"github.com/papercomputeco/wellchat/pkg/config"
	"github.com/papercomputeco/wellchat/pkg/dotdir"
	"github.com/papercomputeco/wellchat/pkg/llm"
	"github.com/papercomputeco/wellchat/pkg/logger"
)

// REPL commands.
const (
	cmdExit  = "/exit"
	cmdReset = "/reset"
)

var (
	userPrompt      = cliui.UserStyle.Render("you> ")
	assistantPrompt = cliui.AssistantStyle.Render("wellchat> ")
)

type chatCommander struct {
	apiKey      string
	contextFile string
	logFile     string
	noHistory   bool
	debug       bool
	configDir   string

	cfg     *config.Config
	logger  *slog.Logger
	logSink io.Closer
	ddm     *dotdir.Manager
}

const chatLongDesc string = `Start an interactive conversation with the assistant.

Each answer is streamed as it is generated. The conversation is saved to
history.json in the .wellchat/ directory and resumed the next time you run
"wellchat chat". The most recent messages (assistant.max_history) are sent
with every question.

Commands:
  /reset   Forget the conversation and start fresh
  /exit    Quit (Ctrl+D works too)

Press Ctrl+C while an answer is streaming to stop it.

Examples:
  wellchat chat
  wellchat chat --model gpt-4.1 --context-file ./health.md
  wellchat chat --log-file ./chat.log --debug`

const chatShortDesc string = "Interactive health assistant chat"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			var err error
			cmder.cfg, err = config.LoadForCommand(cmd, cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd)
		},
	}

	config.AddRequestFlags(cmd)
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "API key (default: environment, then credentials.toml)")
	cmd.Flags().StringVar(&cmder.contextFile, "context-file", "", "File with background health context added to every prompt")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.noHistory, "no-history", false, "Neither resume nor save the conversation")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	var err error
	c.logger, err = c.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if c.logSink != nil {
		defer c.logSink.Close()
	}

	a, err := assistant.Setup(c.cfg, assistant.SetupOptions{
		ConfigDir:   c.configDir,
		APIKey:      c.apiKey,
		ContextFile: c.contextFile,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}

	c.ddm = dotdir.NewManager()

	var messages []llm.Message
	if !c.noHistory {
		h, err := c.ddm.LoadHistory(c.configDir)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		if h != nil {
			messages = h.Messages
		}
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	fmt.Fprintln(out)
	if len(messages) > 0 {
		fmt.Fprintf(out, "  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(messages))),
		)
	} else {
		fmt.Fprintf(out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	fmt.Fprintf(out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.ValueStyle.Render(c.cfg.API.Model),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /reset to start over, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case cmdExit:
			fmt.Fprintln(out)
			return nil
		case cmdReset:
			messages = nil
			if !c.noHistory {
				if err := c.ddm.ClearHistory(c.configDir); err != nil {
					fmt.Fprintf(errOut, "  %s %v\n", cliui.FailMark, err)
					continue
				}
			}
			fmt.Fprintf(out, "  %s Conversation cleared\n\n", cliui.SuccessMark)
			continue
		}

		answer, err := c.turn(cmd.Context(), a, messages, input, out)
		if err != nil {
			fmt.Fprintf(errOut, "  %s %v\n\n", cliui.FailMark, assistant.Explain(err, c.cfg.API.Provider))
			continue
		}

		turn := assistant.Turn(input, answer.Text)
		messages = append(messages, turn...)
		if !c.noHistory {
			if _, err := c.ddm.AppendHistory(c.configDir, turn...); err != nil {
				c.logger.Warn("could not save history", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

// turn streams one answer. Ctrl+C cancels the answer but not the session.
// A partial answer is never recorded.
func (c *chatCommander) turn(ctx context.Context, a *assistant.Assistant, history []llm.Message, question string, out io.Writer) (*assistant.Answer, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprint(out, assistantPrompt)
	answer, err := a.Ask(ctx, history, question, out)
	fmt.Fprint(out, "\n\n")

	if errors.Is(err, context.Canceled) {
		return nil, errors.New("answer interrupted")
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("turn complete",
		"history", len(history),
		"chars", len(answer.Text),
		"duration", cliui.FormatDuration(answer.Duration),
	)

	return answer, nil
}

// newLogger logs to w and, with --log-file, additionally to a JSON file
// that always receives debug records.
func (c *chatCommander) newLogger(w io.Writer) (*slog.Logger, error) {
	console := logger.Console(w, c.debug)
	if c.logFile == "" {
		return console, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	c.logSink = f

	file := logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(true),
	)

	return logger.Multi(console, file), nil
}
