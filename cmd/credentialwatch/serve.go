package main

import (
	"fmt"

	"github.com/spf13/cobra"

	transporthttp "github.com/rhuss/credentialwatch/pkg/transport/http"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sweep, chat and tool catalog API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, opts.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tools.Connect(ctx); err != nil {
				return fmt.Errorf("connecting tool endpoints: %w", err)
			}

			adapterCfg := transporthttp.DefaultConfig()
			adapterCfg.DefaultWindowDays = cfg.Sweep.WindowDays
			adapterCfg.MetricsEnabled = cfg.Observability.Metrics.Enabled
			adapterCfg.MetricsPath = cfg.Observability.Metrics.Path
			adapterCfg.Logger = opts.logger

			var conv transporthttp.Conversation
			if a.engine != nil {
				conv = a.engine
			}
			adapter := transporthttp.NewAdapter(a.sweep, conv, a.tools, adapterCfg)

			srv := transporthttp.NewServer(adapter.Handler(),
				transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
				transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
				transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
				transporthttp.WithLogger(opts.logger),
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
