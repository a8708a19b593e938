// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharmaqa/cvkit/folds"
	"github.com/pharmaqa/cvkit/quality"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the statistical quality checks against the fold dataset",
	Long: `Loads the prepared dataset and runs the full validation suite:
chi-square category independence, per-fold Kolmogorov-Smirnov
complexity tests, fold balance, and stratification quality. The
command exits non-zero when any check fails, so it gates pipelines.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	store, err := folds.Load(cfg.Dataset.DatasetPath)
	if err != nil {
		return err
	}

	report := quality.NewValidator(store,
		quality.WithConfig(cfg.Validation.Config),
		quality.WithValidatorLogger(logger.Logger),
	).RunComprehensiveValidation()

	if err := report.WriteReport(cfg.Validation.ReportPath); err != nil {
		return err
	}

	printHeader("Dataset Validation")
	for _, r := range report.OrderedResults() {
		line := fmt.Sprintf("   %-26s %s", r.TestName, passFail(r.Passed))
		switch {
		case r.Error != "":
			line += fmt.Sprintf("  (%s)", r.Error)
		case r.Rating != "":
			line += fmt.Sprintf("  score=%.3f rating=%s", r.Score, r.Rating)
		default:
			line += fmt.Sprintf("  p=%.4f", r.PValue)
		}
		fmt.Println(line)
	}
	fmt.Printf("   Passed %d of %d checks\n",
		report.OverallSummary.TestsPassed, len(report.TestResults))
	for _, rec := range report.Recommendations {
		fmt.Printf("   - %s\n", rec)
	}
	fmt.Printf("   Report written: %s\n", cfg.Validation.ReportPath)

	if !report.OverallSummary.OverallPassed {
		return fmt.Errorf("dataset failed %d validation check(s)", report.OverallSummary.TestsFailed)
	}
	return nil
}
