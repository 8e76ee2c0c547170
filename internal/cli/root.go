package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool
}

// NewRootCommand creates the root command. Without a subcommand it runs the TUI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	run := &RunOptions{}

	cmd := &cobra.Command{
		Use:           "assetgrip",
		Short:         "Browse an asset inventory in the terminal",
		Long:          "assetgrip pages licenses, software, payments, purchases and third-party assets into a virtualized terminal list.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, run)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with ASSETGRIP_* overrides")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	addRunFlags(cmd, run)

	cmd.AddCommand(NewWindowCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
