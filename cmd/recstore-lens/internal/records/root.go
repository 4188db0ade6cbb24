package records

import (
	common "github.com/nspcc-dev/recstore/cmd/recstore-lens/internal"
	"github.com/spf13/cobra"
)

var (
	vConfig  string
	vPath    string
	vBorrows bool
)

// Root contains `records` command definition.
var Root = &cobra.Command{
	Use:   "records",
	Short: "Operations with a record store file",
}

func init() {
	Root.AddCommand(
		infoCMD,
		listCMD,
		getCMD,
		findCMD,
		exportCMD,
		updateCMD,
	)
}

func addBorrowsFlag(cmd *cobra.Command) {
	common.AddBorrowsFlag(cmd, &vBorrows)
}

func addStoreFlags(cmd *cobra.Command) {
	common.AddConfigFileFlag(cmd, &vConfig)
	common.AddPathFlag(cmd, &vPath)
}

func openStore(cmd *cobra.Command) (*common.Store, error) {
	prm := common.StorePrm{
		ConfigPath: vConfig,
		Path:       vPath,
	}
	if f := cmd.Flags().Lookup("maintain-borrows"); f != nil && f.Changed {
		prm.Borrows = &vBorrows
	}

	return common.OpenStore(prm)
}
