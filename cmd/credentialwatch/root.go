package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rhuss/credentialwatch/pkg/config"
	"github.com/rhuss/credentialwatch/pkg/debug"
)

type cliOptions struct {
	configPath string
	jsonOutput bool
	mockMode   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "credentialwatch",
		Short:         "Watch provider credentials for upcoming expiry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().StringVar(&opts.mockMode, "mock", "", "mock mode override: auto, on or off")

	root.AddCommand(
		newServeCmd(opts),
		newSweepCmd(opts),
		newChatCmd(opts),
		newToolsCmd(opts),
	)

	return root
}

// load reads the configuration and installs the process logger.
func (o *cliOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mock") {
		cfg.MCP.MockMode = o.mockMode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	o.cfg = cfg
	o.logger = debug.Setup(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})
	return nil
}
