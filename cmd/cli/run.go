// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "run <training|hospital>",
		Short:     "Execute a full pipeline run",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"training", "hospital"},
		RunE:      runPipeline,
	}
	cmd.Flags().Bool("clear", false, "clear existing downstream data before ingesting")
	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if kind != "training" && kind != "hospital" {
		return fmt.Errorf("unknown pipeline kind %q (want training or hospital)", kind)
	}

	clear, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}

	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}

	path := "/pipeline/run/" + kind
	if clear {
		path += "?clear_existing=true"
	}

	raw, err := client.call(cmd.Context(), http.MethodPost, path)
	if err != nil {
		return err
	}
	return printJSON(cmd, raw)
}

func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "step <proxyfhir|deid|featurizer|model-train|predict>",
		Short:     "Execute a single pipeline step",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"proxyfhir", "deid", "featurizer", "model-train", "predict"},
		RunE:      runStep,
	}

	flags := cmd.Flags()
	flags.String("data-source", "", "data source for proxyfhir/deid steps (training|hospital)")
	flags.Bool("clear", false, "clear existing data first (deid/predict steps)")
	flags.Int("batch-size", 0, "feature extraction batch size (featurizer step)")
	flags.Int("limit", 0, "maximum patients to predict (predict step)")

	return cmd
}

func runStep(cmd *cobra.Command, args []string) error {
	step := args[0]

	flags := cmd.Flags()
	query := url.Values{}

	if flags.Changed("data-source") {
		v, err := flags.GetString("data-source")
		if err != nil {
			return err
		}
		query.Set("data_source", v)
	}
	if flags.Changed("clear") {
		v, err := flags.GetBool("clear")
		if err != nil {
			return err
		}
		query.Set("clear_existing", strconv.FormatBool(v))
	}
	if flags.Changed("batch-size") {
		v, err := flags.GetInt("batch-size")
		if err != nil {
			return err
		}
		query.Set("batch_size", strconv.Itoa(v))
	}
	if flags.Changed("limit") {
		v, err := flags.GetInt("limit")
		if err != nil {
			return err
		}
		query.Set("limit", strconv.Itoa(v))
	}

	switch step {
	case "proxyfhir", "deid", "featurizer", "model-train", "predict":
	default:
		return fmt.Errorf("unknown step %q", step)
	}

	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}

	path := "/pipeline/steps/" + step
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	raw, err := client.call(cmd.Context(), http.MethodPost, path)
	if err != nil {
		return err
	}
	return printJSON(cmd, raw)
}
