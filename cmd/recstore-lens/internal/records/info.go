package records

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var infoCMD = &cobra.Command{
	Use:   "info",
	Short: "Print store file header",
	Long:  "Print store file header and the number of records in the file",
	Args:  cobra.NoArgs,
	RunE:  infoFunc,
}

func init() {
	addStoreFlags(infoCMD)
}

type headerInfo struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Level   string `yaml:"level"`
	Size    int64  `yaml:"payload_size"`
	Records int    `yaml:"records"`
}

func infoFunc(cmd *cobra.Command, _ []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	hdr, err := s.Header()
	if err != nil {
		return err
	}

	recs, err := s.LoadAll(false)
	if err != nil {
		return fmt.Errorf("could not read records: %w", err)
	}

	data, err := yaml.Marshal(headerInfo{
		Name:    hdr.Name,
		Path:    hdr.Path,
		Level:   hdr.Level.String(),
		Size:    hdr.Size,
		Records: len(recs),
	})
	if err != nil {
		return err
	}

	cmd.Print(string(data))
	return nil
}
