// Package wellchatcmder
package wellchatcmder

import (
	"github.com/spf13/cobra"

	versioncmder "github.com/papercomputeco/wellchat/cmd/version"
	askcmder "github.com/papercomputeco/wellchat/cmd/wellchat/ask"
	authcmder "github.com/papercomputeco/wellchat/cmd/wellchat/auth"
	chatcmder "github.com/papercomputeco/wellchat/cmd/wellchat/chat"
	configcmder "github.com/papercomputeco/wellchat/cmd/wellchat/config"
	historycmder "github.com/papercomputeco/wellchat/cmd/wellchat/history"
)

const wellchatLongDesc string = `Wellchat is a health and wellness assistant for your terminal.

Answers are streamed from an OpenAI-compatible Responses API endpoint as
they are generated.

Get started:
  wellchat auth openai          Store your API key
  wellchat ask "question"       Ask a single question
  wellchat chat                 Start an interactive conversation`

const wellchatShortDesc string = "Wellchat - streaming health assistant"

func NewWellchatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "wellchat",
		Short:        wellchatShortDesc,
		Long:         wellchatLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .wellchat/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
