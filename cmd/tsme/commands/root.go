package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	username   string
	password   string
	counterID  string
	provider   string
	baseURL    string
	configPath string
	verbose    int
}

func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "tsme", "config.yaml")
}

// NewRootCmd builds the tsme command tree. Running it without a
// subcommand is the same as running show.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "tsme",
		Short:         "tsme reads water consumption from the toutsurmoneau customer portals.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.username, "username", "u", "", "Portal account login (prompted when missing).")
	flags.StringVarP(&opts.password, "password", "p", "", "Portal account password (prompted when missing).")
	flags.StringVarP(&opts.counterID, "counter-id", "c", "", "Water counter id, discovered from the portal when empty.")
	flags.StringVarP(&opts.provider, "provider", "P", "", "Provider name, see the providers command.")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Log more, repeat for debug output.")
	flags.StringVar(&opts.configPath, "config", defaultConfigPath(), "YAML file with the same keys as the exporter configuration.")
	flags.StringVar(&opts.baseURL, "base-url", "", "Portal URL overriding the provider registry.")
	_ = flags.MarkHidden("base-url")

	rootCmd.AddCommand(
		newShowCmd(opts),
		newProvidersCmd(),
		newCheckCmd(opts),
	)
	return rootCmd
}

// ExecuteContext runs the command line and returns the process exit code
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
