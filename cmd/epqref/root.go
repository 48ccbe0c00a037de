package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"epqref/internal/config"
	"epqref/internal/util"
)

const version = "0.3.0"

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "epqref",
		Short: "Golden-testing bridge to the EPQ reference oracle",
		Long: `epqref batches reference-data requests to the EPQ Java oracle,
decodes its framed CSV output, and validates every table against the
declared dump-module schemas. One oracle process is spawned per session,
whatever the batch size.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "epqref.yaml", "path to config file")
	root.AddCommand(
		newRunCmd(),
		newDumpCmd(),
		newModulesCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the configured YAML file; a missing file falls back to
// defaults so `epqref dump` works without any setup.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) || configPath != "epqref.yaml" {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.Default()
	}
	util.SetVerbose(cfg.Logging.Verbose)
	return cfg, nil
}
