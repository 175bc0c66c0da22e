package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell
// completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate a shell completion script for procscope.

The script is written to stdout. To try it in the current shell:

  bash:       source <(procscope completion bash)
  zsh:        source <(procscope completion zsh)
  fish:       procscope completion fish | source
  powershell: procscope completion powershell | Out-String | Invoke-Expression

To install it permanently, redirect the script into your shell's completion
directory, for example:

  procscope completion bash > /etc/bash_completion.d/procscope
  procscope completion zsh  > "${fpath[1]}/_procscope"
  procscope completion fish > ~/.config/fish/completions/procscope.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
