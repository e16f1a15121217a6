// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show overall pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			raw, err := client.call(cmd.Context(), http.MethodGet, "/pipeline/status")
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe every downstream service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			raw, err := client.call(cmd.Context(), http.MethodGet, "/pipeline/health")
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
}

func newClearAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Clear all downstream pipeline data (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := cmd.Flags().GetString("admin-token")
			if err != nil {
				return err
			}
			if token == "" {
				token = os.Getenv("ADMIN_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("admin token required (--admin-token or ADMIN_TOKEN)")
			}

			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			client.adminToken = token

			raw, err := client.call(cmd.Context(), http.MethodDelete, "/pipeline/clear-all")
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	cmd.Flags().String("admin-token", "", "admin bearer token")
	return cmd
}

func newShowRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-run <run-id>",
		Short: "Show a stored pipeline run report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID %q", args[0])
			}

			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			raw, err := client.call(cmd.Context(), http.MethodGet, "/pipeline/runs/"+runID.String())
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
}
