package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCmd(opts *cliOptions) *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry sweep and create alerts for expiring credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if windowDays <= 0 {
				windowDays = opts.cfg.Sweep.WindowDays
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tools.Connect(ctx); err != nil {
				return fmt.Errorf("connecting tool endpoints: %w", err)
			}

			res, err := a.sweep.Run(ctx, windowDays)
			if err != nil {
				return err
			}
			if err := printSweepResult(res, opts.jsonOutput); err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				return exitError{code: 2, silent: true}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&windowDays, "window-days", 0, "look-ahead window in days (default from sweep.window_days)")
	return cmd
}
