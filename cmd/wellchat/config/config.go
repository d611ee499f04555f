// Package configcmder provides the config command for managing persistent
// wellchat configuration stored in the .wellchat/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent wellchat configuration.

Configuration is stored as config.toml in the .wellchat/ directory and
provides default values for command flags. CLI flags take precedence over
WELLCHAT_* environment variables, which take precedence over config file
values.

Keys use dotted notation matching the TOML section structure:
  api.provider, api.base_url, api.model, api.timeout,
  sampling.temperature, sampling.top_p, sampling.max_output_tokens,
  assistant.instructions, assistant.prompt_prefix, assistant.max_history,
  limits.requests_per_minute, limits.breaker_failures

Use subcommands to get, set, or list configuration values:
  wellchat config set <key> <value>    Set a configuration value
  wellchat config get <key>            Get a configuration value
  wellchat config list                 List all configuration values

Examples:
  wellchat config set api.model gpt-4.1
  wellchat config set sampling.temperature 0.3
  wellchat config get api.model
  wellchat config list`

const configShortDesc string = "Manage persistent wellchat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
