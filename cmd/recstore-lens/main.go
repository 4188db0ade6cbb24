package main

import (
	"os"

	"github.com/nspcc-dev/recstore/cmd/internal/cmderr"
	"github.com/nspcc-dev/recstore/cmd/recstore-lens/internal/records"
	"github.com/nspcc-dev/recstore/misc"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:           "recstore-lens",
	Short:         "Record Store Lens",
	Long:          `Record Store Lens provides tools to browse and maintain record store files.`,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func entryPoint(cmd *cobra.Command, _ []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Print(misc.BuildInfo("Record Store Lens"))

		return nil
	}

	return cmd.Usage()
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)
	command.Flags().Bool("version", false, "Application version")
	command.AddCommand(
		records.Root,
	)
}

func main() {
	err := command.Execute()
	cmderr.ExitOnErr(err)
}
