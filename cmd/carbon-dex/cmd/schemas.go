package cmd

import (
	"github.com/lugondev/go-carbon-dex/internal/output"
	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the supported account layouts",
	Long:  `List every layout the decoder knows with its length policy and owning programs.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		printer, err := newPrinter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return printer.PrintSchemas(output.SchemaInfos(d.Registry()))
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
