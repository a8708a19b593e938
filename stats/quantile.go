// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"fmt"
	"math"
	"sort"
)

// Quantile returns the p-quantile (0 <= p <= 1) of the sample using linear
// interpolation between order statistics at rank h = (n-1)*p.
//
// This is the "linear" estimator (Hyndman-Fan type 7), the convention the
// persisted fold boundaries use. Gonum's CumulantKind quantiles follow
// different conventions, so this is implemented directly; boundary values
// must stay bit-for-bit stable across rebuilds.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: quantile of empty sample", ErrInsufficientData)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("quantile probability %v outside [0, 1]", p)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}

// QuantileBoundaries returns n+1 boundaries splitting the sample into n
// equal-probability intervals: the quantiles at 0, 1/n, ..., 1.
func QuantileBoundaries(values []float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("boundary count must be positive, got %d", n)
	}
	if len(values) < n {
		return nil, fmt.Errorf("%w: %d values for %d intervals", ErrInsufficientData, len(values), n)
	}
	bounds := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		q, err := Quantile(values, float64(i)/float64(n))
		if err != nil {
			return nil, err
		}
		bounds[i] = q
	}
	return bounds, nil
}
