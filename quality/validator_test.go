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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaqa/cvkit/corpus"
	"github.com/pharmaqa/cvkit/folds"
)

// balancedCorpus builds perCategory documents in each of the four
// normalized categories with ascending complexity scores.
func balancedCorpus(t *testing.T, perCategory int) []corpus.Document {
	t.Helper()
	var docs []corpus.Document
	for ci, category := range corpus.Categories() {
		for i := 0; i < perCategory; i++ {
			id := fmt.Sprintf("doc-%d-%02d", ci, i)
			docs = append(docs, corpus.Document{
				DocID:             id,
				FilePath:          "/corpus/" + id + ".md",
				GAMPCategory:      string(category),
				Normalized:        category,
				SystemType:        "LIMS",
				Domain:            "Quality Control",
				ComplexityLevel:   "Medium",
				ComplexityScore:   float64(ci*perCategory+i+1) * 0.5,
				TotalRequirements: 10 + i,
			})
		}
	}
	return docs
}

func balancedStore(t *testing.T) *folds.Store {
	t.Helper()
	store, err := folds.NewBuilder().Build(balancedCorpus(t, 5))
	require.NoError(t, err)
	return store
}

// lopsidedStore piles most of fold 5's test documents onto fold 1,
// producing the size imbalance the balance and stratification checks
// exist to catch.
func lopsidedStore(t *testing.T) *folds.Store {
	t.Helper()
	store := balancedStore(t)
	src := store.Folds["fold_5"]
	dst := store.Folds["fold_1"]
	dst.TestDocuments = append(dst.TestDocuments, src.TestDocuments[:3]...)
	src.TestDocuments = src.TestDocuments[3:]
	dst.TestCount = len(dst.TestDocuments)
	src.TestCount = len(src.TestDocuments)
	return store
}

func TestValidateCategoryDistribution_Balanced(t *testing.T) {
	result, err := NewValidator(balancedStore(t)).ValidateCategoryDistribution()
	require.NoError(t, err)

	// Perfectly uniform table: statistic 0, p-value 1.
	assert.True(t, result.Passed)
	assert.InDelta(t, 0.0, result.Statistic, 1e-9)
	assert.InDelta(t, 1.0, result.PValue, 1e-9)
	assert.Equal(t, 12, result.Details["degrees_of_freedom"])
}

func TestValidateCategoryDistribution_SingleCategory(t *testing.T) {
	var docs []corpus.Document
	for _, d := range balancedCorpus(t, 8) {
		if d.Normalized == corpus.Category4 {
			docs = append(docs, d)
		}
	}
	store, err := folds.NewBuilder().Build(docs)
	require.NoError(t, err)

	_, err = NewValidator(store).ValidateCategoryDistribution()
	assert.Error(t, err)
}

func TestValidateComplexityDistribution_Balanced(t *testing.T) {
	result, err := NewValidator(balancedStore(t)).ValidateComplexityDistribution()
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.GreaterOrEqual(t, result.PValue, 0.05)

	perFold, ok := result.Details["per_fold_p_values"].(map[string]float64)
	require.True(t, ok)
	assert.Len(t, perFold, 5)
	// The reported p-value is the minimum across folds.
	for _, p := range perFold {
		assert.GreaterOrEqual(t, p, result.PValue)
	}
}

func TestValidateFoldBalance_Balanced(t *testing.T) {
	result, err := NewValidator(balancedStore(t)).ValidateFoldBalance()
	require.NoError(t, err)

	// Identical sizes and category counts: CV exactly 0.
	assert.True(t, result.Passed)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, "Good", result.Rating)
}

func TestValidateFoldBalance_Lopsided(t *testing.T) {
	result, err := NewValidator(lopsidedStore(t)).ValidateFoldBalance()
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, "Poor", result.Rating)
	assert.Greater(t, result.Score, 0.2)
}

func TestValidateStratification_Balanced(t *testing.T) {
	result, err := NewValidator(balancedStore(t)).ValidateStratification()
	require.NoError(t, err)

	// Every dimension perfectly even: composite score 1.
	assert.True(t, result.Passed)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, "Excellent", result.Rating)

	scores, ok := result.Details["dimension_scores"].(map[string]float64)
	require.True(t, ok)
	assert.Equal(t, 1.0, scores["category"])
	assert.Equal(t, 1.0, scores["complexity_level"])
	assert.Equal(t, 1.0, scores["domain"])
}

func TestValidateStratification_Lopsided(t *testing.T) {
	result, err := NewValidator(lopsidedStore(t)).ValidateStratification()
	require.NoError(t, err)
	assert.Less(t, result.Score, 1.0)
}

func TestRunComprehensiveValidation_AllPass(t *testing.T) {
	report := NewValidator(balancedStore(t)).RunComprehensiveValidation()

	require.Len(t, report.TestResults, 4)
	assert.Equal(t, 4, report.OverallSummary.TestsPassed)
	assert.Equal(t, 0, report.OverallSummary.TestsFailed)
	assert.True(t, report.OverallSummary.OverallPassed)
	assert.Equal(t, 1.0, report.OverallSummary.PassRate)
	require.Len(t, report.Recommendations, 1)
	assert.Contains(t, report.Recommendations[0], "passed all checks")
}

func TestRunComprehensiveValidation_ErroredCheckRecorded(t *testing.T) {
	var docs []corpus.Document
	for _, d := range balancedCorpus(t, 8) {
		if d.Normalized == corpus.Category4 {
			docs = append(docs, d)
		}
	}
	store, err := folds.NewBuilder().Build(docs)
	require.NoError(t, err)

	report := NewValidator(store).RunComprehensiveValidation()

	// The chi-square check cannot run with one category; the suite
	// still reports all four checks.
	require.Len(t, report.TestResults, 4)
	assert.False(t, report.OverallSummary.OverallPassed)

	categoryResult, ok := report.TestResults["category_distribution"]
	require.True(t, ok)
	assert.False(t, categoryResult.Passed)
	assert.NotEmpty(t, categoryResult.Error)
	// An errored check still carries its threshold and description.
	assert.Equal(t, DefaultConfig().Alpha, categoryResult.Threshold)
	assert.NotEmpty(t, categoryResult.Description)
}

func TestRunComprehensiveValidation_FailureRecommendations(t *testing.T) {
	report := NewValidator(lopsidedStore(t)).RunComprehensiveValidation()

	assert.False(t, report.OverallSummary.OverallPassed)
	require.NotEmpty(t, report.Recommendations)
	// The overall verdict leads; per-check advice follows.
	assert.Contains(t, report.Recommendations[0], "dataset failed")
	assert.Contains(t, report.Recommendations[0], "of 4 checks")
	joined := fmt.Sprint(report.Recommendations[1:])
	assert.Contains(t, joined, "fold sizes")
}

func TestReport_WriteReport(t *testing.T) {
	report := NewValidator(balancedStore(t)).RunComprehensiveValidation()
	path := filepath.Join(t.TempDir(), "validation.json")
	require.NoError(t, report.WriteReport(path))
	assert.FileExists(t, path)
}

func TestReport_SerializedShape(t *testing.T) {
	report := NewValidator(balancedStore(t)).RunComprehensiveValidation()

	data, err := json.Marshal(report)
	require.NoError(t, err)

	// test_results is an object keyed by test name, not an array.
	var decoded struct {
		DatasetInfo map[string]any             `json:"dataset_info"`
		TestResults map[string]json.RawMessage `json:"test_results"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.TestResults, 4)
	for _, name := range []string{
		"category_distribution", "complexity_distribution",
		"fold_balance", "stratification_quality",
	} {
		raw, ok := decoded.TestResults[name]
		require.True(t, ok, name)
		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Contains(t, entry, "threshold", name)
		assert.Contains(t, entry, "description", name)
		assert.NotEmpty(t, entry["description"], name)
	}
	assert.Contains(t, decoded.DatasetInfo, "total_folds")
	assert.Equal(t, float64(5), decoded.DatasetInfo["total_folds"])
}

func TestReport_OrderedResults(t *testing.T) {
	report := NewValidator(balancedStore(t)).RunComprehensiveValidation()
	ordered := report.OrderedResults()
	require.Len(t, ordered, 4)
	assert.Equal(t, "category_distribution", ordered[0].TestName)
	assert.Equal(t, "complexity_distribution", ordered[1].TestName)
	assert.Equal(t, "fold_balance", ordered[2].TestName)
	assert.Equal(t, "stratification_quality", ordered[3].TestName)
}

func TestValidationResult_Thresholds(t *testing.T) {
	cfg := Config{Alpha: 0.01, BalanceThreshold: 0.15, StratificationMinScore: 0.8}
	v := NewValidator(balancedStore(t), WithConfig(cfg))

	chi, err := v.ValidateCategoryDistribution()
	require.NoError(t, err)
	assert.Equal(t, 0.01, chi.Threshold)

	ks, err := v.ValidateComplexityDistribution()
	require.NoError(t, err)
	assert.Equal(t, 0.01, ks.Threshold)

	balance, err := v.ValidateFoldBalance()
	require.NoError(t, err)
	assert.Equal(t, 0.15, balance.Threshold)

	strat, err := v.ValidateStratification()
	require.NoError(t, err)
	assert.Equal(t, 0.8, strat.Threshold)
}

func TestValidator_CustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StratificationMinScore = 1.0

	result, err := NewValidator(lopsidedStore(t), WithConfig(cfg)).ValidateStratification()
	require.NoError(t, err)
	// A lopsided store can never reach a perfect score.
	assert.False(t, result.Passed)
}
