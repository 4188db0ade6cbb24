package records

import (
	"fmt"
	"strconv"

	"github.com/nspcc-dev/recstore/cmd/internal/cmdprinter"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "List records of the store file",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var vLimit int

func init() {
	listCMD.Flags().IntVar(&vLimit, "limit", 0, "Number of records to list, 0 lists all")
	addStoreFlags(listCMD)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	if vLimit < 0 {
		return fmt.Errorf("limit must not be negative: %d", vLimit)
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	n := vLimit
	if n == 0 {
		n = -1
	}

	it, err := s.LoadN(n, false)
	if err != nil {
		return err
	}
	defer it.Close()

	tbl := tablewriter.NewWriter(cmd.OutOrStdout())
	tbl.SetHeader([]string{"Title", "Type", "Size", "Digest"})

	for it.Next() {
		rec := it.Record()

		digest, err := cmdprinter.Digest(rec)
		if err != nil {
			return err
		}

		tbl.Append([]string{rec.Title(), cmdprinter.Kind(rec), size(rec), digest})
	}
	if err := it.Err(); err != nil {
		return err
	}

	tbl.Render()
	return nil
}

// size returns member count for groups and content length for blobs.
func size(rec entity.Record) string {
	if g, ok := rec.(*entity.Group); ok {
		return strconv.Itoa(g.Len()) + " members"
	}
	content, err := rec.Content()
	if err != nil {
		return "?"
	}
	return strconv.Itoa(len(content)) + " bytes"
}
