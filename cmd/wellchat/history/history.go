// Package historycmder provides the history subcommand for viewing or
// clearing the saved chat conversation.
package historycmder

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wellchat/pkg/cliui"
	"github.com/papercomputeco/wellchat/pkg/dotdir"
	"github.com/papercomputeco/wellchat/pkg/llm"
	"github.com/papercomputeco/wellchat/pkg/utils"
)

const previewLen = 72

type historyCommander struct {
	clear     bool
	full      bool
	last      int
	configDir string
}

const historyLongDesc string = `Show or clear the saved chat conversation.

"wellchat chat" saves every completed exchange to history.json in the
.wellchat/ directory and resumes from it on the next run. Messages are
shown as one-line previews unless --full is given.

Examples:
  wellchat history              Preview the saved conversation
  wellchat history --last 4     Preview the four most recent messages
  wellchat history --full       Print messages in full
  wellchat history --clear      Forget the conversation`

const historyShortDesc string = "Show or clear the saved conversation"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.clear, "clear", false, "Delete the saved conversation")
	cmd.Flags().BoolVar(&cmder.full, "full", false, "Print whole messages instead of previews")
	cmd.Flags().IntVarP(&cmder.last, "last", "n", 0, "Only show the N most recent messages (0 for all)")

	return cmd
}

func (c *historyCommander) run(out io.Writer) error {
	ddm := dotdir.NewManager()

	if c.clear {
		if err := ddm.ClearHistory(c.configDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintf(out, "  %s History cleared. Next chat will start a new conversation.\n", cliui.SuccessMark)
		return nil
	}

	h, err := ddm.LoadHistory(c.configDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if h == nil || len(h.Messages) == 0 {
		fmt.Fprintf(out, "  %s No saved conversation.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	messages := h.Messages
	if c.last > 0 && len(messages) > c.last {
		messages = messages[len(messages)-c.last:]
	}

	fmt.Fprintf(out, "  %s %d messages, last updated %s\n\n",
		cliui.KeyStyle.Render("Conversation:"),
		len(h.Messages),
		cliui.DimStyle.Render(h.UpdatedAt.Local().Format(time.DateTime)),
	)

	for _, msg := range messages {
		label := roleLabel(msg.Role)
		if c.full {
			fmt.Fprintf(out, "%s\n%s\n\n", label, msg.Content)
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", label, utils.Truncate(msg.Content, previewLen))
	}

	return nil
}

func roleLabel(role string) string {
	switch role {
	case llm.RoleUser:
		return cliui.UserStyle.Render("[you]")
	case llm.RoleAssistant:
		return cliui.AssistantStyle.Render("[wellchat]")
	default:
		return cliui.DimStyle.Render("[" + role + "]")
	}
}
