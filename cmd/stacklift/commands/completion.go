package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// Completion returns the command that writes a shell completion script to
// stdout.
func Completion() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Write a shell completion script to stdout",
		Long: `Write a completion script for bash, zsh, fish or powershell.

Redirect the output into your shell's completion directory, for example:

  stacklift completion bash > /etc/bash_completion.d/stacklift
  stacklift completion zsh > "${fpath[1]}/_stacklift"
  stacklift completion fish > ~/.config/fish/completions/stacklift.fish`,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
