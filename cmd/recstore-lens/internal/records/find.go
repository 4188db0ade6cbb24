package records

import (
	"fmt"

	"github.com/nspcc-dev/recstore/cmd/internal/cmdprinter"
	"github.com/spf13/cobra"
)

var findCMD = &cobra.Command{
	Use:   "find <title>",
	Short: "Find records by title",
	Long: `Find records by title scanning sub-record headers only.
Every record with the given title is printed, duplicates included.`,
	Args: cobra.ExactArgs(1),
	RunE: findFunc,
}

func init() {
	addStoreFlags(findCMD)
	addBorrowsFlag(findCMD)
}

func findFunc(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	it, err := s.Find(args[0], s.MaintainBorrows)
	if err != nil {
		return err
	}
	defer it.Close()

	var found int
	for it.Next() {
		if err := cmdprinter.PrettyPrintRecord(cmd, it.Record(), ""); err != nil {
			return err
		}
		found++
	}
	if err := it.Err(); err != nil {
		return err
	}

	if found == 0 {
		return fmt.Errorf("record %q is not found", args[0])
	}
	return nil
}
