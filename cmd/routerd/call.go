// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/rpcrouter/rpc"
	"github.com/luxfi/rpcrouter/transformer"
)

func callCmd() *cobra.Command {
	var (
		configPath string
		address    string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "call <path> [json-input]",
		Short: "Call a procedure on a running routerd",
		Long: `Call a procedure on a running routerd and print its output as JSON.

Examples:
  routerd call health.check
  routerd call greeter.hello '{"name":"lux"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if address == "" {
				address = cfg.Server.Address
			}
			tr, err := transformer.ByName(cfg.Router.Transformer)
			if err != nil {
				return err
			}

			var input any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
					return fmt.Errorf("invalid input: %w", err)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := rpc.Dial(ctx, address,
				rpc.WithTransport(cfg.Server.Transport),
				rpc.WithTransformer(tr),
			)
			if err != nil {
				return err
			}
			defer client.Close()

			var output any
			err = client.Call(ctx, args[0], input, &output)
			var perr *rpc.ProcedureError
			if errors.As(err, &perr) {
				if werr := printJSON(cmd, perr.Shape); werr != nil {
					return werr
				}
				return err
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, output)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSONC config file")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Server address (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Call timeout")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
