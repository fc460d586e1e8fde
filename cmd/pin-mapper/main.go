// Package main provides the CLI entrypoint for pin-mapper.
//
// pin-mapper edits the virtual pins of composite nodes stored on disk or in
// SQLite:
//   - lists, shows and validates composite definitions
//   - exposes internal ports as virtual pins and maps more ports onto them
//   - changes merge strategies and evaluates them against sample values
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pin-mapper/internal/config"
	"pin-mapper/internal/engine"
	"pin-mapper/internal/logging"
	"pin-mapper/internal/pin"
	"pin-mapper/internal/store"
)

// defaultConfigFile is read from the working directory when --config is not given.
const defaultConfigFile = "pin-mapper.yaml"

// app holds the state shared by all commands of one invocation.
type app struct {
	configPath string
	storePath  string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	store  store.ResourceManager
	close  func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pin-mapper",
		Short: "Manage the virtual pins of composite nodes",
		Long: `pin-mapper manages the virtual pins of composite nodes.

A virtual pin exposes one or more ports of the nodes inside a composite.
Output pins that map several ports merge their values with a strategy:
last, first or array.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+defaultConfigFile+" if present)")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "override storage.path from the config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newInitCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newStrategyCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newSuggestCmd(a),
		newEvalCmd(a),
		newValidateCmd(a),
		newDumpCmd(a),
	)

	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.storePath != "" {
		cfg.Storage.Path = a.storePath
	}

	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log, a.verbose)
	if err != nil {
		return err
	}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := store.NewSQLiteStore(cfg.Storage.Path, a.logger)
		if err != nil {
			return err
		}

		a.store, a.close = s, s.Close
	default:
		s, err := store.NewFileStore(cfg.Storage.Path, cfg.Storage.Format, a.logger)
		if err != nil {
			return err
		}

		a.store = s
	}

	a.logger.Debug("store opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path))

	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}

	cfg, err := config.LoadFile(defaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}

	return cfg, err
}

func (a *app) teardown() {
	if a.close != nil {
		if err := a.close(); err != nil {
			a.logger.Warn("closing store", zap.Error(err))
		}
	}

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// manager returns an engine that persists every mutation to the store.
func (a *app) manager() *engine.Manager {
	return engine.NewManager(engine.Options{
		StrictTypes: a.cfg.StrictTypes,
		Numbering:   a.cfg.Numbering,
		Persister:   a.store,
		Logger:      a.logger,
	})
}

// open loads a composite from the store into a new engine.
func (a *app) open(compositeID string) (*engine.Manager, error) {
	def, err := a.store.Load(compositeID)
	if err != nil {
		return nil, err
	}

	m := a.manager()

	diags, err := m.Open(def)
	if err != nil {
		return nil, err
	}

	for _, w := range diags.Warnings {
		a.logger.Warn("composite loaded with warning", zap.String("code", w.Code), zap.String("detail", w.String()))
	}

	return m, nil
}

// describe formats a pin for command output.
func describe(m *engine.Manager, compositeID string, vp pin.VirtualPinConfig) string {
	num, err := m.PinDisplayNumber(compositeID, vp.PinIndex)
	if err != nil {
		return vp.Label()
	}

	return fmt.Sprintf("%s (%s %q)", num, vp.Label(), vp.PinName)
}
