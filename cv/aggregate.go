// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cv

import (
	"fmt"

	"github.com/pharmaqa/cvkit/stats"
)

// -----------------------------------------------------------------------------
// Aggregation
// -----------------------------------------------------------------------------

// Aggregate summarizes a full cross-validation run.
type Aggregate struct {
	TotalFolds      int `json:"total_folds"`
	SuccessfulFolds int `json:"successful_folds"`
	FailedFolds     int `json:"failed_folds"`

	TotalTestsGenerated int     `json:"total_tests_generated"`
	MeanTestsGenerated  float64 `json:"mean_tests_generated"`
	MinTestsGenerated   int     `json:"min_tests_generated"`
	MaxTestsGenerated   int     `json:"max_tests_generated"`
	MeanSuccessRate     float64 `json:"mean_success_rate"`

	// MetricSummaries aggregates every workflow-reported metric across
	// the folds that reported it.
	MetricSummaries map[string]MetricSummary `json:"metric_summaries,omitempty"`

	// Consistency grades fold-to-fold variation of the workflow output:
	// High (CV < 0.1), Medium (< 0.2), else Low. Judged on the worse of
	// the tests-generated CV and the success-rate CV over successful
	// folds only.
	Consistency string `json:"consistency"`

	// ExecutionTimeStability is Stable when fold durations vary with a
	// CV under 0.2, else Variable.
	ExecutionTimeStability string `json:"execution_time_stability"`

	// Reliability grades completion: High when every fold succeeded,
	// Medium at 80 percent or better, else Low.
	Reliability string `json:"reliability"`

	Recommendations []string `json:"recommendations"`
}

// MetricSummary describes one workflow metric across folds.
type MetricSummary struct {
	Folds int     `json:"folds"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Std   float64 `json:"std"`
}

// aggregate computes the summary over the recorded fold runs.
func aggregate(runs []*FoldRun) Aggregate {
	agg := Aggregate{TotalFolds: len(runs)}

	var tests, rates, durations []float64
	metricValues := make(map[string][]float64)
	for _, run := range runs {
		if !run.Succeeded() {
			agg.FailedFolds++
			continue
		}
		agg.SuccessfulFolds++
		agg.TotalTestsGenerated += run.Result.TestsGenerated
		tests = append(tests, float64(run.Result.TestsGenerated))
		rates = append(rates, run.Result.SuccessRate)
		durations = append(durations, run.Duration.Seconds())
		for name, value := range run.Result.Metrics {
			metricValues[name] = append(metricValues[name], value)
		}
	}

	if agg.SuccessfulFolds > 0 {
		agg.MeanTestsGenerated = stats.Mean(tests)
		agg.MeanSuccessRate = stats.Mean(rates)
		min, max, _ := stats.MinMax(tests)
		agg.MinTestsGenerated = int(min)
		agg.MaxTestsGenerated = int(max)
	}
	if len(metricValues) > 0 {
		agg.MetricSummaries = make(map[string]MetricSummary, len(metricValues))
		for name, values := range metricValues {
			min, max, _ := stats.MinMax(values)
			agg.MetricSummaries[name] = MetricSummary{
				Folds: len(values),
				Mean:  stats.Mean(values),
				Min:   min,
				Max:   max,
				Std:   stats.StdDev(values),
			}
		}
	}

	testsCV := stats.CoefficientOfVariation(tests)
	ratesCV := stats.CoefficientOfVariation(rates)
	worstCV := testsCV
	if ratesCV > worstCV {
		worstCV = ratesCV
	}
	switch {
	case agg.SuccessfulFolds == 0:
		agg.Consistency = "Low"
	case worstCV < 0.1:
		agg.Consistency = "High"
	case worstCV < 0.2:
		agg.Consistency = "Medium"
	default:
		agg.Consistency = "Low"
	}

	if agg.SuccessfulFolds > 0 && stats.CoefficientOfVariation(durations) < 0.2 {
		agg.ExecutionTimeStability = "Stable"
	} else {
		agg.ExecutionTimeStability = "Variable"
	}

	completion := float64(agg.SuccessfulFolds) / float64(agg.TotalFolds)
	switch {
	case completion == 1.0:
		agg.Reliability = "High"
	case completion >= 0.8:
		agg.Reliability = "Medium"
	default:
		agg.Reliability = "Low"
	}

	agg.Recommendations = runRecommendations(&agg, runs)
	return agg
}

// runRecommendations derives deterministic advice from the aggregate.
func runRecommendations(agg *Aggregate, runs []*FoldRun) []string {
	var recs []string
	if agg.FailedFolds > 0 {
		for _, run := range runs {
			if !run.Succeeded() {
				recs = append(recs, fmt.Sprintf("fold %d failed: %s", run.FoldNumber, run.Error))
			}
		}
		recs = append(recs, "re-run the failed folds before drawing conclusions from this run")
	}
	if agg.Consistency == "Low" && agg.SuccessfulFolds > 1 {
		recs = append(recs, "workflow output varies heavily across folds; inspect the per-fold results for a dataset or prompt issue")
	}
	if agg.ExecutionTimeStability == "Variable" && agg.SuccessfulFolds > 1 {
		recs = append(recs, "fold execution times vary widely; check for external load or fold-size imbalance")
	}
	if len(recs) == 0 {
		recs = append(recs, "all folds completed consistently; results are suitable for aggregation")
	}
	return recs
}
