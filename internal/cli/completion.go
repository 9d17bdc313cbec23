package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/pkg/pipeline"
	"github.com/matzehuels/stackarray/pkg/store"
)

// completionCommand prints a shell completion script for stackarray.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script for stackarray.

Besides subcommands and flags, the scripts complete artifact formats for
compute --format and convert --from/--to, definition files for compute and
saved array names for store get and store delete.

  bash        source <(stackarray completion bash)
  zsh         stackarray completion zsh > "${fpath[1]}/_stackarray"
  fish        stackarray completion fish > ~/.config/fish/completions/stackarray.fish
  powershell  stackarray completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// registerCompletions attaches argument and flag completions to the
// subcommands of root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	collections := []string{pipeline.FormatBin, pipeline.FormatDXF}
	all := []string{pipeline.FormatJSON, pipeline.FormatBin, pipeline.FormatDXF}

	if cmd, _, err := root.Find([]string{"compute"}); err == nil {
		cmd.ValidArgsFunction = completeFiles("toml", "yaml", "yml")
		_ = cmd.RegisterFlagCompletionFunc("format", completeFormatList(all))
	}
	if cmd, _, err := root.Find([]string{"convert"}); err == nil {
		cmd.ValidArgsFunction = completeFiles(collections...)
		_ = cmd.RegisterFlagCompletionFunc("from", cobra.FixedCompletions(collections, cobra.ShellCompDirectiveNoFileComp))
		_ = cmd.RegisterFlagCompletionFunc("to", cobra.FixedCompletions(collections, cobra.ShellCompDirectiveNoFileComp))
	}
	if cmd, _, err := root.Find([]string{"inspect"}); err == nil {
		cmd.ValidArgsFunction = completeFiles("toml", "yaml", "yml", pipeline.FormatBin, pipeline.FormatDXF)
	}
	if cmd, _, err := root.Find([]string{"store", "get"}); err == nil {
		cmd.ValidArgsFunction = c.completeArrayNames(1)
		_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(collections, cobra.ShellCompDirectiveNoFileComp))
	}
	if cmd, _, err := root.Find([]string{"store", "delete"}); err == nil {
		cmd.ValidArgsFunction = c.completeArrayNames(-1)
	}
}

// completeFiles restricts file completion to the given extensions.
func completeFiles(exts ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeFormatList completes the last entry of a comma-separated format
// list, skipping formats already named.
func completeFormatList(formats []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		given := strings.Split(prefix, ",")
		var out []string
		for _, f := range formats {
			if !slices.Contains(given, f) {
				out = append(out, prefix+f)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

// completeArrayNames lists saved arrays from the configured store. A max of
// n positional arguments stops completion once reached; n < 0 means no limit.
func (c *CLI) completeArrayNames(n int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if n >= 0 && len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var names []string
		err := c.withStore(ctx, func(st store.Store) error {
			infos, err := st.List(ctx)
			for _, info := range infos {
				if !slices.Contains(args, info.Name) {
					names = append(names, info.Name)
				}
			}
			return err
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
