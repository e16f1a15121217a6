// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func defaultAPIURL() string {
	if v := os.Getenv("ORCHESTRATOR_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clinpipe",
		Short:         "Clinpipe drives the clinical data pipeline orchestrator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("api-url", defaultAPIURL(), "orchestrator API base URL")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newStepCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newClearAllCmd())
	cmd.AddCommand(newShowRunCmd())

	return cmd
}
