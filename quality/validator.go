// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package quality

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/pharmaqa/cvkit/corpus"
	"github.com/pharmaqa/cvkit/folds"
	"github.com/pharmaqa/cvkit/stats"
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config holds the validation thresholds. The zero value is not usable;
// construct through DefaultConfig and override as needed.
type Config struct {
	// Alpha is the significance level for the chi-square and KS tests.
	// A p-value at or above Alpha means "no detectable imbalance", which
	// is the passing direction here.
	Alpha float64 `yaml:"alpha" validate:"gt=0,lt=1"`

	// BalanceThreshold is the maximum acceptable coefficient of
	// variation for fold sizes and per-category counts.
	BalanceThreshold float64 `yaml:"balance_threshold" validate:"gt=0"`

	// StratificationMinScore is the minimum composite stratification
	// score (0 to 1) for the stratification check to pass.
	StratificationMinScore float64 `yaml:"stratification_min_score" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the standard thresholds: alpha 0.05, balance
// CV limit 0.2, minimum stratification score 0.7.
func DefaultConfig() Config {
	return Config{
		Alpha:                  0.05,
		BalanceThreshold:       0.2,
		StratificationMinScore: 0.7,
	}
}

// -----------------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------------

// ValidationResult is the outcome of one statistical check.
type ValidationResult struct {
	// TestName identifies the check ("category_distribution", etc.).
	TestName string `json:"test_name"`

	// Passed reports whether the check met its threshold. A check that
	// could not run at all is recorded with Passed=false and Error set.
	Passed bool `json:"passed"`

	// Statistic and PValue are set for the hypothesis tests
	// (chi-square, KS); zero for the descriptive checks.
	Statistic float64 `json:"statistic,omitempty"`
	PValue    float64 `json:"p_value,omitempty"`

	// Score is set for the descriptive checks (balance, stratification).
	Score float64 `json:"score,omitempty"`

	// Threshold is the configured value the check was judged against:
	// the significance level for the hypothesis tests, the CV limit for
	// balance, the minimum composite score for stratification.
	Threshold float64 `json:"threshold"`

	// Description says in one line what the check established.
	Description string `json:"description,omitempty"`

	// Rating is a human-readable grade where the check defines one.
	Rating string `json:"rating,omitempty"`

	// Details carries check-specific diagnostics.
	Details map[string]any `json:"details,omitempty"`

	// Error records why a check could not run.
	Error string `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// Validator runs the statistical checks against one fold store.
type Validator struct {
	store  *folds.Store
	cfg    Config
	logger *slog.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithConfig overrides the default thresholds.
func WithConfig(cfg Config) ValidatorOption {
	return func(v *Validator) { v.cfg = cfg }
}

// WithValidatorLogger sets the logger. Default: slog.Default().
func WithValidatorLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewValidator returns a Validator over store.
func NewValidator(store *folds.Store, opts ...ValidatorOption) *Validator {
	v := &Validator{
		store:  store,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// -----------------------------------------------------------------------------
// Category Distribution (chi-square)
// -----------------------------------------------------------------------------

// ValidateCategoryDistribution tests whether GAMP category is
// independent of fold membership with a chi-square test over the
// category-by-fold contingency table of test-set counts.
//
// Categories absent from the corpus contribute no row; a corpus with a
// single category cannot be tested and returns an error. Passing means
// p >= alpha: no detectable association between category and fold.
func (v *Validator) ValidateCategoryDistribution() (*ValidationResult, error) {
	assignments := v.store.Assignments()

	present := v.presentCategories()
	if len(present) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 categories for a contingency table, corpus has %d",
			stats.ErrInsufficientData, len(present))
	}

	observed := make([][]float64, len(present))
	for i, category := range present {
		row := make([]float64, len(assignments))
		for j, a := range assignments {
			for _, d := range a.TestDocuments {
				if d.Normalized == category {
					row[j]++
				}
			}
		}
		observed[i] = row
	}

	cs, err := stats.ChiSquareIndependence(observed)
	if err != nil {
		return nil, fmt.Errorf("category distribution test: %w", err)
	}

	passed := cs.PValue >= v.cfg.Alpha
	v.logger.Info("category distribution check",
		"statistic", cs.Statistic, "p_value", cs.PValue, "passed", passed)

	return &ValidationResult{
		TestName:    "category_distribution",
		Passed:      passed,
		Statistic:   cs.Statistic,
		PValue:      cs.PValue,
		Threshold:   v.cfg.Alpha,
		Description: checkDescriptions["category_distribution"],
		Details: map[string]any{
			"degrees_of_freedom": cs.DegreesOfFreedom,
			"categories":         categoryNames(present),
		},
	}, nil
}

// -----------------------------------------------------------------------------
// Complexity Distribution (Kolmogorov-Smirnov)
// -----------------------------------------------------------------------------

// ValidateComplexityDistribution runs a two-sample KS test of each
// fold's test-set complexity scores against the pooled corpus scores.
//
// The reported p-value is the minimum across folds, uncorrected: one
// bad fold fails the whole dataset, which is the conservative direction
// for a gate. The worst fold is named in the details.
func (v *Validator) ValidateComplexityDistribution() (*ValidationResult, error) {
	pooled := corpus.ComplexityScores(v.store.AllDocuments())

	minP := math.Inf(1)
	maxStat := 0.0
	worstFold := 0
	perFold := make(map[string]float64)
	perFoldStats := make(map[string]map[string]float64)

	for _, a := range v.store.Assignments() {
		scores := corpus.ComplexityScores(a.TestDocuments)
		ks, err := stats.KolmogorovSmirnov(scores, pooled)
		if err != nil {
			return nil, fmt.Errorf("complexity distribution test, fold %d: %w", a.FoldNumber, err)
		}
		key := fmt.Sprintf("fold_%d", a.FoldNumber)
		perFold[key] = ks.PValue
		perFoldStats[key] = map[string]float64{
			"mean": stats.Mean(scores),
			"std":  stats.StdDev(scores),
		}
		if ks.PValue < minP {
			minP = ks.PValue
			maxStat = ks.Statistic
			worstFold = a.FoldNumber
		}
	}

	passed := minP >= v.cfg.Alpha
	v.logger.Info("complexity distribution check",
		"min_p_value", minP, "worst_fold", worstFold, "passed", passed)

	return &ValidationResult{
		TestName:    "complexity_distribution",
		Passed:      passed,
		Statistic:   maxStat,
		PValue:      minP,
		Threshold:   v.cfg.Alpha,
		Description: checkDescriptions["complexity_distribution"],
		Details: map[string]any{
			"worst_fold":        worstFold,
			"per_fold_p_values": perFold,
			"per_fold_scores":   perFoldStats,
			"pooled_mean":       stats.Mean(pooled),
			"pooled_std":        stats.StdDev(pooled),
		},
	}, nil
}

// -----------------------------------------------------------------------------
// Fold Balance (coefficient of variation)
// -----------------------------------------------------------------------------

// ValidateFoldBalance checks that test-fold sizes and per-category
// counts vary little across folds. Both the size CV and the worst
// per-category CV must stay at or under the balance threshold.
//
// Rating: Good (CV <= 0.1), Acceptable (<= 0.2), else Poor, judged on
// the worse of the two CVs.
func (v *Validator) ValidateFoldBalance() (*ValidationResult, error) {
	assignments := v.store.Assignments()

	sizes := make([]float64, len(assignments))
	for i, a := range assignments {
		sizes[i] = float64(a.TestCount)
	}
	sizeCV := stats.CoefficientOfVariation(sizes)

	categoryCVs := make(map[string]float64)
	maxCategoryCV := 0.0
	for _, category := range v.presentCategories() {
		counts := make([]float64, len(assignments))
		for i, a := range assignments {
			for _, d := range a.TestDocuments {
				if d.Normalized == category {
					counts[i]++
				}
			}
		}
		cv := stats.CoefficientOfVariation(counts)
		categoryCVs[string(category)] = cv
		if cv > maxCategoryCV {
			maxCategoryCV = cv
		}
	}

	worst := math.Max(sizeCV, maxCategoryCV)
	passed := worst <= v.cfg.BalanceThreshold
	rating := balanceRating(worst)
	v.logger.Info("fold balance check",
		"size_cv", sizeCV, "max_category_cv", maxCategoryCV, "rating", rating, "passed", passed)

	return &ValidationResult{
		TestName:    "fold_balance",
		Passed:      passed,
		Score:       worst,
		Threshold:   v.cfg.BalanceThreshold,
		Description: checkDescriptions["fold_balance"],
		Rating:      rating,
		Details: map[string]any{
			"size_cv":      sizeCV,
			"category_cvs": categoryCVs,
		},
	}, nil
}

func balanceRating(cv float64) string {
	switch {
	case cv <= 0.1:
		return "Good"
	case cv <= 0.2:
		return "Acceptable"
	default:
		return "Poor"
	}
}

// -----------------------------------------------------------------------------
// Stratification Quality (composite)
// -----------------------------------------------------------------------------

// ValidateStratification scores how evenly three document dimensions
// spread across the test folds: normalized category, complexity level,
// and domain.
//
// For each dimension, every observed value gets a CV of its per-fold
// counts; the dimension's average CV is clamped at 1 and inverted, so
// 1.0 means perfectly even and 0.0 means maximally lopsided. The
// composite score is the mean over the three dimensions and must reach
// the configured minimum.
//
// Per-dimension rating: Excellent (avg CV <= 0.1), Good (<= 0.2),
// Acceptable (<= 0.3), else Poor.
func (v *Validator) ValidateStratification() (*ValidationResult, error) {
	dimensions := []struct {
		name string
		key  func(d corpus.Document) string
	}{
		{"category", func(d corpus.Document) string { return string(d.Normalized) }},
		{"complexity_level", func(d corpus.Document) string { return d.ComplexityLevel }},
		{"domain", func(d corpus.Document) string { return d.Domain }},
	}

	assignments := v.store.Assignments()
	dimScores := make(map[string]float64, len(dimensions))
	dimRatings := make(map[string]string, len(dimensions))
	total := 0.0

	for _, dim := range dimensions {
		avgCV := v.dimensionAverageCV(assignments, dim.key)
		score := 1 - math.Min(avgCV, 1)
		dimScores[dim.name] = score
		dimRatings[dim.name] = stratificationRating(avgCV)
		total += score
	}

	composite := total / float64(len(dimensions))
	passed := composite >= v.cfg.StratificationMinScore
	v.logger.Info("stratification check", "score", composite, "passed", passed)

	return &ValidationResult{
		TestName:    "stratification_quality",
		Passed:      passed,
		Score:       composite,
		Threshold:   v.cfg.StratificationMinScore,
		Description: checkDescriptions["stratification_quality"],
		Rating:      stratificationRating(1 - composite),
		Details: map[string]any{
			"dimension_scores":  dimScores,
			"dimension_ratings": dimRatings,
		},
	}, nil
}

// dimensionAverageCV averages, over every observed value of one
// document dimension, the CV of that value's per-fold test counts.
func (v *Validator) dimensionAverageCV(assignments []*folds.Assignment, key func(corpus.Document) string) float64 {
	values := make(map[string][]float64)
	for i, a := range assignments {
		for _, d := range a.TestDocuments {
			k := key(d)
			if values[k] == nil {
				values[k] = make([]float64, len(assignments))
			}
			values[k][i]++
		}
	}
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, counts := range values {
		sum += stats.CoefficientOfVariation(counts)
	}
	return sum / float64(len(values))
}

func stratificationRating(avgCV float64) string {
	switch {
	case avgCV <= 0.1:
		return "Excellent"
	case avgCV <= 0.2:
		return "Good"
	case avgCV <= 0.3:
		return "Acceptable"
	default:
		return "Poor"
	}
}

// -----------------------------------------------------------------------------
// Comprehensive Run
// -----------------------------------------------------------------------------

// checkOrder is the canonical run and reporting order of the suite.
var checkOrder = []string{
	"category_distribution",
	"complexity_distribution",
	"fold_balance",
	"stratification_quality",
}

// checkDescriptions is the one-line statement each check carries into
// the persisted report.
var checkDescriptions = map[string]string{
	"category_distribution":   "chi-square test that GAMP category is independent of fold membership",
	"complexity_distribution": "per-fold two-sample KS test of complexity scores against the pooled corpus (minimum p across folds)",
	"fold_balance":            "coefficient of variation of fold sizes and per-category counts across folds",
	"stratification_quality":  "composite evenness score over the category, complexity-level, and domain dimensions",
}

// checkThreshold returns the configured threshold a named check is
// judged against.
func (v *Validator) checkThreshold(name string) float64 {
	switch name {
	case "fold_balance":
		return v.cfg.BalanceThreshold
	case "stratification_quality":
		return v.cfg.StratificationMinScore
	default:
		return v.cfg.Alpha
	}
}

// RunComprehensiveValidation runs all four checks and assembles a
// Report. A check that errors is recorded as a failed result carrying
// the error text; the suite itself never aborts.
func (v *Validator) RunComprehensiveValidation() *Report {
	runners := map[string]func() (*ValidationResult, error){
		"category_distribution":   v.ValidateCategoryDistribution,
		"complexity_distribution": v.ValidateComplexityDistribution,
		"fold_balance":            v.ValidateFoldBalance,
		"stratification_quality":  v.ValidateStratification,
	}

	results := make([]ValidationResult, 0, len(checkOrder))
	for _, name := range checkOrder {
		result, err := runners[name]()
		if err != nil {
			v.logger.Error("validation check failed to run", "test", name, "error", err)
			results = append(results, ValidationResult{
				TestName:    name,
				Passed:      false,
				Threshold:   v.checkThreshold(name),
				Description: checkDescriptions[name],
				Error:       err.Error(),
			})
			continue
		}
		results = append(results, *result)
	}
	return v.buildReport(results)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// presentCategories returns, in canonical order, the normalized
// categories that actually occur in the corpus.
func (v *Validator) presentCategories() []corpus.NormalizedCategory {
	counts := v.store.Metadata.CategoryDistribution
	var present []corpus.NormalizedCategory
	for _, category := range corpus.Categories() {
		if counts[string(category)] > 0 {
			present = append(present, category)
		}
	}
	return present
}

func categoryNames(categories []corpus.NormalizedCategory) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	sort.Strings(names)
	return names
}
