package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToolsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Connect to the tool endpoints and list the discovered tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tools.Connect(ctx); err != nil {
				return fmt.Errorf("connecting tool endpoints: %w", err)
			}
			return printTools(a.tools.Status(), a.tools.Tools(), opts.jsonOutput)
		},
	}
	return cmd
}
