package main

import (
	"github.com/spf13/cobra"

	"github.com/e7canasta/crowd-gate/estimator"
)

var estimateVideo string

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the crowd count from a video sample",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := newEstimates(cfg, estimateVideo).Get(cmd.Context())

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), estimateOutput{
				Result: result,
				Error:  errString(result.Err),
			})
		}
		renderEstimate(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateVideo, "video", "", "video file to sample (overrides config)")
}

type estimateOutput struct {
	estimator.Result
	Error string `json:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
