package common

import (
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/recstore/cmd/recstore-lens/internal/config"
	loggerconfig "github.com/nspcc-dev/recstore/cmd/recstore-lens/internal/config/logger"
	storeconfig "github.com/nspcc-dev/recstore/cmd/recstore-lens/internal/config/store"
	"github.com/nspcc-dev/recstore/pkg/recstore/container"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/util/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagConfig      = "config"
	flagConfigUsage = "Lens configuration file (YAML, JSON or ENV)"

	flagPath      = "path"
	flagPathUsage = "Path to the store file, overrides configuration"

	flagBorrows      = "maintain-borrows"
	flagBorrowsUsage = "Keep references as references when reading records"
)

// Errf returns formatted error in errFmt format if err is not nil.
func Errf(errFmt string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf(errFmt, err)
}

// AddConfigFileFlag adds the config file flag to the command.
func AddConfigFileFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagConfig, "", flagConfigUsage)
}

// AddPathFlag adds the store file path flag to the command.
func AddPathFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagPath, "", flagPathUsage)
}

// AddBorrowsFlag adds the maintain-borrows flag to the command.
func AddBorrowsFlag(cmd *cobra.Command, v *bool) {
	cmd.Flags().BoolVar(v, flagBorrows, false, flagBorrowsUsage)
}

// ReadConfig reads lens configuration from the file. Home directory in the
// path is expanded. Empty path means ENV-only configuration.
func ReadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.New()
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path %q: %w", path, err)
	}

	return config.New(config.WithConfigFile(expanded))
}

// StorePrm groups OpenStore parameters taken from command flags.
type StorePrm struct {
	ConfigPath string
	Path       string
	// Borrows is set if maintain-borrows flag was passed explicitly.
	Borrows *bool
}

// Store is an opened record store with the settings it was opened with.
type Store struct {
	*container.DB

	Log             *zap.Logger
	Level           string
	MaintainBorrows bool
}

// Close closes the store and flushes the logger.
func (s *Store) Close() error {
	err := s.DB.Close()
	_ = s.Log.Sync()
	return err
}

// OpenStore configures and opens the record store described by the
// configuration and command flags.
func OpenStore(prm StorePrm) (*Store, error) {
	cfg, err := ReadConfig(prm.ConfigPath)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	path := prm.Path
	if path == "" {
		path = storeconfig.Path(cfg)
	}
	if path == "" {
		return nil, errors.New("store path is not set: use --path flag or store.path parameter")
	}
	path, err = homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	bc, err := blobCodec(storeconfig.BlobCodec(cfg))
	if err != nil {
		return nil, err
	}

	opts := []container.Option{
		container.WithLogger(log),
		container.WithBlobCodec(bc),
		container.WithWorkers(storeconfig.Workers(cfg)),
		container.WithSpanCacheSize(storeconfig.SpanCacheSize(cfg)),
		container.WithScanChunkSize(storeconfig.ScanChunkSize(cfg)),
	}

	name := storeconfig.Name(cfg)
	if name == "" {
		name, err = headerName(path, opts)
		if err != nil {
			return nil, err
		}
	}

	db, err := container.New(name, path, opts...)
	if err != nil {
		return nil, err
	}

	borrows := storeconfig.MaintainBorrows(cfg)
	if prm.Borrows != nil {
		borrows = *prm.Borrows
	}

	return &Store{
		DB:              db,
		Log:             log,
		Level:           storeconfig.Level(cfg),
		MaintainBorrows: borrows,
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var prm logger.Prm

	if err := prm.SetLevelString(loggerconfig.Level(cfg)); err != nil {
		return nil, fmt.Errorf("invalid logger level: %w", err)
	}
	if err := prm.SetEncoding(loggerconfig.Encoding(cfg)); err != nil {
		return nil, fmt.Errorf("invalid logger encoding: %w", err)
	}

	return logger.NewLogger(&prm)
}

func blobCodec(name string) (entity.BlobCodec, error) {
	switch name {
	case "raw":
		return entity.RawCodec{}, nil
	case "yaml":
		return entity.YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown blob codec %q", name)
	}
}

// headerName reads the name stored in the file header.
func headerName(path string, opts []container.Option) (string, error) {
	db, err := container.New("", path, opts...)
	if err != nil {
		return "", err
	}
	defer db.Close()

	hdr, err := db.Header()
	if err != nil {
		return "", err
	}

	return hdr.Name, nil
}
