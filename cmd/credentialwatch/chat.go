package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhuss/credentialwatch/pkg/api"
)

func newChatCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask one question about providers, credentials or alerts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.ChatRequest{Message: strings.Join(args, " ")}
			if apiErr := api.ValidateChatRequest(&req); apiErr != nil {
				return exitWith(2, apiErr.Message)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tools.Connect(ctx); err != nil {
				return fmt.Errorf("connecting tool endpoints: %w", err)
			}

			reply, err := a.engine.Turn(ctx, req.Message, nil)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(api.ChatResponse{Reply: reply})
			}
			fmt.Println(reply)
			return nil
		},
	}
	return cmd
}
