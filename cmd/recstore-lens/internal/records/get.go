package records

import (
	"github.com/nspcc-dev/recstore/cmd/internal/cmdprinter"
	"github.com/spf13/cobra"
)

var getCMD = &cobra.Command{
	Use:   "get <title>",
	Short: "Load record by title",
	Long:  "Load record by title decoding the store file record by record",
	Args:  cobra.ExactArgs(1),
	RunE:  getFunc,
}

func init() {
	addStoreFlags(getCMD)
	addBorrowsFlag(getCMD)
}

func getFunc(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Load(args[0], s.MaintainBorrows)
	if err != nil {
		return err
	}

	return cmdprinter.PrettyPrintRecord(cmd, rec, "")
}
