// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareResult holds the outcome of a chi-square test of independence.
type ChiSquareResult struct {
	// Statistic is the chi-square statistic.
	Statistic float64

	// PValue is the upper-tail probability under the chi-squared
	// distribution with DegreesOfFreedom.
	PValue float64

	// DegreesOfFreedom is (rows-1) * (cols-1).
	DegreesOfFreedom int

	// Expected holds the expected counts under independence, with the
	// same shape as the observed table.
	Expected [][]float64
}

// ChiSquareIndependence runs a chi-square test of independence on a
// contingency table of observed counts.
//
// Inputs:
//   - observed: Rectangular table, at least 2x2. Rows and columns with a
//     zero total make the test undefined and return ErrDegenerateTable;
//     this is a data-quality condition the caller must surface, never a
//     condition to paper over with a default p-value.
//
// Outputs:
//   - *ChiSquareResult: Statistic, upper-tail p-value, df, expected counts.
//   - error: Non-nil when the table is malformed or degenerate.
func ChiSquareIndependence(observed [][]float64) (*ChiSquareResult, error) {
	rows := len(observed)
	if rows < 2 {
		return nil, fmt.Errorf("%w: chi-square requires at least 2 rows, got %d", ErrInsufficientData, rows)
	}
	cols := len(observed[0])
	if cols < 2 {
		return nil, fmt.Errorf("%w: chi-square requires at least 2 columns, got %d", ErrInsufficientData, cols)
	}

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	var grand float64
	for i, row := range observed {
		if len(row) != cols {
			return nil, fmt.Errorf("contingency table is ragged: row %d has %d columns, want %d", i, len(row), cols)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("contingency table has negative count %v at [%d][%d]", v, i, j)
			}
			rowTotals[i] += v
			colTotals[j] += v
			grand += v
		}
	}
	for i, t := range rowTotals {
		if t == 0 {
			return nil, fmt.Errorf("%w: row %d", ErrDegenerateTable, i)
		}
	}
	for j, t := range colTotals {
		if t == 0 {
			return nil, fmt.Errorf("%w: column %d", ErrDegenerateTable, j)
		}
	}

	expected := make([][]float64, rows)
	var statistic float64
	for i := range observed {
		expected[i] = make([]float64, cols)
		for j := range observed[i] {
			e := rowTotals[i] * colTotals[j] / grand
			expected[i][j] = e
			d := observed[i][j] - e
			statistic += d * d / e
		}
	}

	df := (rows - 1) * (cols - 1)
	dist := distuv.ChiSquared{K: float64(df)}
	return &ChiSquareResult{
		Statistic:        statistic,
		PValue:           dist.Survival(statistic),
		DegreesOfFreedom: df,
		Expected:         expected,
	}, nil
}
