// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/router"
)

func routesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the procedures of the merged router",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			app, err := buildApp(cfg, zap.NewNop(), nil)
			if err != nil {
				return fmt.Errorf("merge routers: %w", err)
			}
			return printRoutes(cmd, app)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSONC config file")
	return cmd
}

func printRoutes(cmd *cobra.Command, app *router.Router) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tTYPE")
	for _, path := range app.Paths() {
		p, _ := app.Procedure(path)
		fmt.Fprintf(w, "%s\t%s\n", path, p.Type())
	}

	cfg := app.Config()
	fmt.Fprintf(w, "\ndelimiter %q\tserver=%t dev=%t\n", cfg.NamespaceDelimiter, cfg.IsServer, cfg.IsDev)
	return w.Flush()
}
