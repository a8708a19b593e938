// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// -----------------------------------------------------------------------------
// Report Structure
// -----------------------------------------------------------------------------

// Summary aggregates the pass/fail tally of one validation run.
type Summary struct {
	TestsPassed   int     `json:"tests_passed"`
	TestsFailed   int     `json:"tests_failed"`
	OverallPassed bool    `json:"overall_passed"`
	PassRate      float64 `json:"pass_rate"`
}

// Report is the full validation outcome, suitable for persisting next
// to the fold dataset it describes. TestResults is keyed by test name;
// use OrderedResults for the canonical presentation order.
type Report struct {
	Timestamp       time.Time                   `json:"timestamp"`
	DatasetInfo     map[string]any              `json:"dataset_info"`
	TestResults     map[string]ValidationResult `json:"test_results"`
	OverallSummary  Summary                     `json:"overall_summary"`
	Recommendations []string                    `json:"recommendations"`
}

// OrderedResults returns the results in the canonical check order.
func (r *Report) OrderedResults() []ValidationResult {
	out := make([]ValidationResult, 0, len(r.TestResults))
	for _, name := range checkOrder {
		if result, ok := r.TestResults[name]; ok {
			out = append(out, result)
		}
	}
	return out
}

// buildReport assembles the report from individual check results,
// given in canonical order.
func (v *Validator) buildReport(results []ValidationResult) *Report {
	passed := 0
	keyed := make(map[string]ValidationResult, len(results))
	for _, r := range results {
		keyed[r.TestName] = r
		if r.Passed {
			passed++
		}
	}
	failed := len(results) - passed

	report := &Report{
		Timestamp: time.Now().UTC(),
		DatasetInfo: map[string]any{
			"total_documents":       v.store.Metadata.TotalDocuments,
			"total_folds":           v.store.Metadata.Folds,
			"stratification_method": v.store.Metadata.StratificationMethod,
			"category_distribution": v.store.Metadata.CategoryDistribution,
		},
		TestResults: keyed,
		OverallSummary: Summary{
			TestsPassed:   passed,
			TestsFailed:   failed,
			OverallPassed: failed == 0,
			PassRate:      float64(passed) / float64(len(results)),
		},
		Recommendations: recommendations(results),
	}

	v.logger.Info("validation suite complete",
		"passed", passed, "failed", failed, "overall", report.OverallSummary.OverallPassed)
	return report
}

// recommendations derives deterministic follow-up advice: an overall
// verdict line first, then one line per failing check.
func recommendations(results []ValidationResult) []string {
	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	if failed == 0 {
		return []string{"dataset passed all checks; safe to run cross-validation"}
	}

	recs := []string{fmt.Sprintf(
		"dataset failed %d of %d checks; resolve the findings below before running cross-validation",
		failed, len(results))}
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Error != "" {
			recs = append(recs, fmt.Sprintf("%s could not run (%s); fix the dataset and re-validate", r.TestName, r.Error))
			continue
		}
		switch r.TestName {
		case "category_distribution":
			recs = append(recs, "category counts differ significantly across folds; rebuild with more documents per category")
		case "complexity_distribution":
			recs = append(recs, "at least one fold's complexity distribution diverges from the corpus; consider more complexity bins or a larger corpus")
		case "fold_balance":
			recs = append(recs, "fold sizes or per-category counts vary too much; a corpus size divisible by the fold count helps")
		case "stratification_quality":
			recs = append(recs, "stratification score below threshold; check that complexity levels and domains are represented in every fold")
		}
	}
	return recs
}

// -----------------------------------------------------------------------------
// Persistence
// -----------------------------------------------------------------------------

// WriteReport writes the report as indented JSON at path.
func (r *Report) WriteReport(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling validation report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing validation report to %s: %w", path, err)
	}
	return nil
}
