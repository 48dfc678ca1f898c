package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/provider"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Lists the supported water providers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Provider", "Portal", "Default"})
			for _, name := range provider.Providers() {
				portal, err := provider.Lookup(name)
				if err != nil {
					return err
				}
				isDefault := ""
				if portal.Name == provider.Default {
					isDefault = "yes"
				}
				t.AppendRow(table.Row{name, portal.BaseURL, isDefault})
			}
			t.Render()
			return nil
		},
	}
}
