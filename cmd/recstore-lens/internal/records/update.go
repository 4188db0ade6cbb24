package records

import (
	"github.com/spf13/cobra"
)

var updateCMD = &cobra.Command{
	Use:   "update",
	Short: "Rewrite records in place",
	Long: `Load every record and write it back in place, patching only records
whose bytes differ. Works with uncompressed files only.`,
	Args: cobra.NoArgs,
	RunE: updateFunc,
}

func init() {
	addStoreFlags(updateCMD)
}

func updateFunc(cmd *cobra.Command, _ []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.LoadAll(true); err != nil {
		return err
	}

	n, err := s.UpdateAll(true)
	if err != nil {
		return err
	}

	cmd.Printf("%d records patched\n", n)
	return nil
}
