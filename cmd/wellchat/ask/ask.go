// Package askcmder provides the ask command for one-shot questions.
package askcmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wellchat/pkg/assistant"
	"github.com/papercomputeco/wellchat/pkg/cliui"
	"github.com/papercomputeco/wellchat/pkg/config"
	"github.com/papercomputeco/wellchat/pkg/logger"
)

type askCommander struct {
	apiKey      string
	contextFile string
	render      bool
	debug       bool
	configDir   string

	cfg    *config.Config
	logger *slog.Logger
}

const askLongDesc string = `Ask a single question and stream the answer to stdout.

The answer is printed as it is generated. With --render and an interactive
terminal the complete answer is rendered as markdown instead.

Flags override environment variables (WELLCHAT_API_MODEL, ...), which
override config.toml, which overrides the built-in defaults.

Examples:
  wellchat ask "How much water should I drink a day?"
  wellchat ask --model gpt-4.1 --temperature 0.2 "Is a 20 minute nap useful?"
  wellchat ask --context-file ./health.md "What should I focus on this week?"`

const askShortDesc string = "Ask a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			var err error
			cmder.cfg, err = config.LoadForCommand(cmd, cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	config.AddRequestFlags(cmd)
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "API key (default: environment, then credentials.toml)")
	cmd.Flags().StringVar(&cmder.contextFile, "context-file", "", "File with background health context added to the prompt")
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render the answer as markdown when stdout is a terminal")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	c.logger = logger.Console(cmd.ErrOrStderr(), c.debug)

	a, err := assistant.Setup(c.cfg, assistant.SetupOptions{
		ConfigDir:   c.configDir,
		APIKey:      c.apiKey,
		ContextFile: c.contextFile,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()

	var answer *assistant.Answer
	if c.render && cliui.IsTerminal(out) {
		err = cliui.Step(cmd.ErrOrStderr(), "Thinking", func() error {
			var askErr error
			answer, askErr = a.Collect(ctx, nil, question)
			return askErr
		})
		if err != nil {
			return assistant.Explain(err, c.cfg.API.Provider)
		}

		rendered, renderErr := cliui.RenderMarkdown(answer.Text, cliui.TerminalWidth(out, 80))
		if renderErr != nil {
			c.logger.Debug("could not render markdown", "error", renderErr)
		}
		fmt.Fprint(out, rendered)
	} else {
		answer, err = a.Ask(ctx, nil, question, out)
		if answer != nil && answer.Text != "" && !strings.HasSuffix(answer.Text, "\n") {
			fmt.Fprintln(out)
		}
		if err != nil {
			return assistant.Explain(err, c.cfg.API.Provider)
		}
	}

	logUsage(c.logger, answer)
	return nil
}

func logUsage(l *slog.Logger, answer *assistant.Answer) {
	if answer == nil {
		return
	}
	if answer.Usage == nil {
		l.Debug("answer complete", "duration", cliui.FormatDuration(answer.Duration))
		return
	}
	l.Debug("answer complete",
		"duration", cliui.FormatDuration(answer.Duration),
		"input_tokens", answer.Usage.InputTokens,
		"output_tokens", answer.Usage.OutputTokens,
	)
}
