// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/pharmaqa/cvkit/cv"
	"github.com/pharmaqa/cvkit/folds"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the configured workflow across every fold",
	Long: `Loads the prepared dataset and runs the configured workflow command
once per fold, feeding it the fold's train and test file lists as
JSON on stdin. Per-fold outcomes and the aggregate summary are
written to the run report; individual fold failures do not abort
the run.`,
	RunE: runCV,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runCV(cmd *cobra.Command, _ []string) error {
	if cfg.Run.Command == "" {
		return fmt.Errorf("no workflow command configured; set run.command in %s", cfgPath)
	}

	store, err := folds.Load(cfg.Dataset.DatasetPath)
	if err != nil {
		return err
	}

	if cfg.Run.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Run.MetricsAddr, mux); err != nil {
				logger.Warn("metrics endpoint stopped", "addr", cfg.Run.MetricsAddr, "error", err)
			}
		}()
		logger.Info("metrics endpoint listening", "addr", cfg.Run.MetricsAddr)
	}

	opts := []cv.OrchestratorOption{
		cv.WithParallelism(cfg.Run.Parallelism),
		cv.WithSettings(cfg.Run.Settings),
		cv.WithOrchestratorLogger(logger.Logger),
	}
	if cfg.Run.FoldTimeout > 0 {
		opts = append(opts, cv.WithFoldTimeout(time.Duration(cfg.Run.FoldTimeout)))
	}
	if cfg.Run.RateLimit > 0 {
		opts = append(opts, cv.WithRateLimit(rate.Limit(cfg.Run.RateLimit)))
	}

	workflow := cv.NewCommandWorkflow(cfg.Run.Command, cfg.Run.Args...)
	report, err := cv.NewOrchestrator(workflow, opts...).Run(cmd.Context(), store)
	if err != nil {
		return err
	}

	if err := report.Save(cfg.Run.ReportPath); err != nil {
		return err
	}

	printHeader(fmt.Sprintf("Cross-Validation Run %s", report.RunID))
	for _, run := range report.FoldRuns {
		status := passFail(run.Succeeded())
		if run.Succeeded() {
			fmt.Printf("   Fold %d: %s  tests=%d success_rate=%.2f (%s)\n",
				run.FoldNumber, status, run.Result.TestsGenerated,
				run.Result.SuccessRate, run.Duration.Round(10*time.Millisecond))
		} else {
			fmt.Printf("   Fold %d: %s  %s\n", run.FoldNumber, status, run.Error)
		}
	}
	agg := report.Aggregate
	fmt.Printf("   Folds:          %d ok / %d failed\n", agg.SuccessfulFolds, agg.FailedFolds)
	fmt.Printf("   Tests:          %d total (mean %.1f per fold)\n",
		agg.TotalTestsGenerated, agg.MeanTestsGenerated)
	fmt.Printf("   Consistency:    %s\n", agg.Consistency)
	fmt.Printf("   Reliability:    %s\n", agg.Reliability)
	for _, rec := range agg.Recommendations {
		fmt.Printf("   - %s\n", rec)
	}
	fmt.Printf("   Report written: %s\n", cfg.Run.ReportPath)

	if agg.FailedFolds > 0 {
		return fmt.Errorf("%d fold(s) failed", agg.FailedFolds)
	}
	return nil
}
