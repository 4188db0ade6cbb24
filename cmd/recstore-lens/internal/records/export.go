package records

import (
	"fmt"

	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/container"
	"github.com/spf13/cobra"
)

var exportCMD = &cobra.Command{
	Use:   "export",
	Short: "Rewrite the store file",
	Long: `Rewrite the store file at the given level. With --out records are
written to a new file and the source stays untouched.`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

var (
	vLevel string
	vOut   string
)

func init() {
	exportCMD.Flags().StringVar(&vLevel, "level", "", "Export level: none, compressed or a tag (N, C, X); overrides configuration")
	exportCMD.Flags().StringVar(&vOut, "out", "", "Destination file path")
	addStoreFlags(exportCMD)
}

func exportFunc(cmd *cobra.Command, _ []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	lvl := vLevel
	if lvl == "" {
		lvl = s.Level
	}
	level, err := compression.ParseLevelString(lvl)
	if err != nil {
		return err
	}

	recs, err := s.LoadAll(true)
	if err != nil {
		return fmt.Errorf("could not read records: %w", err)
	}

	dst := s.DB
	if vOut != "" {
		dst, err = container.New(s.Name(), vOut,
			container.WithLogger(s.Log),
			container.WithAuthoringIndex(s.Authoring()),
		)
		if err != nil {
			return err
		}
		defer dst.Close()

		for i := range recs {
			if err := dst.Add(recs[i]); err != nil {
				return err
			}
		}
	}

	if err := dst.Export(level); err != nil {
		return err
	}

	cmd.Printf("%d records written to %s (%s)\n", len(recs), dst.Path(), level)
	return nil
}
