package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errCredentialsRejected = errors.New("credentials rejected")

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Checks the credentials against the provider portal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			ok, err := client.CheckCredentials(cmd.Context())
			if err != nil {
				return fmt.Errorf("credential check failed: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w by %s", errCredentialsRejected, cfg.Provider)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credentials accepted by %s\n", cfg.Provider)
			return nil
		},
	}
}
