// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInsufficientData indicates a statistic or test cannot be computed
	// from the provided sample.
	ErrInsufficientData = errors.New("insufficient data for statistical computation")

	// ErrDegenerateTable indicates a contingency table with an empty row or
	// column, on which a chi-square test is undefined.
	ErrDegenerateTable = errors.New("contingency table has a zero row or column total")
)

// -----------------------------------------------------------------------------
// Descriptive Statistics
// -----------------------------------------------------------------------------

// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the sample standard deviation (ddof=1).
// It returns 0 for samples with fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// CoefficientOfVariation returns the sample standard deviation divided by
// the mean.
//
// The balance metric used throughout fold validation. By definition here:
// 0 for empty or single-value samples, and 0 when the mean is 0 (a zero
// mean with non-zero spread has no meaningful relative dispersion, and a
// zero mean with zero spread is perfectly balanced).
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := stat.Mean(values, nil)
	if m == 0 {
		return 0
	}
	return stat.StdDev(values, nil) / m
}

// MinMax returns the smallest and largest values in the sample.
func MinMax(values []float64) (min, max float64, err error) {
	if len(values) == 0 {
		return 0, 0, ErrInsufficientData
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, nil
}
