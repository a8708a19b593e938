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

// KSResult holds the outcome of a two-sample Kolmogorov-Smirnov test.
type KSResult struct {
	// Statistic is the maximum distance between the two empirical CDFs.
	Statistic float64

	// PValue is the asymptotic two-sided p-value.
	PValue float64
}

// KolmogorovSmirnov runs a two-sample KS test comparing the empirical
// distributions of a and b.
//
// The statistic is the supremum distance between the two empirical CDFs,
// computed by a merge walk over the sorted samples. The p-value uses the
// asymptotic Kolmogorov distribution with the small-sample correction
// lambda = (sqrt(ne) + 0.12 + 0.11/sqrt(ne)) * D where ne is the
// effective sample size n1*n2/(n1+n2).
//
// Both samples must be non-empty; an empty sample is an error, never a
// vacuous pass.
func KolmogorovSmirnov(a, b []float64) (*KSResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: KS test requires two non-empty samples (n1=%d, n2=%d)",
			ErrInsufficientData, len(a), len(b))
	}

	s1 := make([]float64, len(a))
	copy(s1, a)
	sort.Float64s(s1)
	s2 := make([]float64, len(b))
	copy(s2, b)
	sort.Float64s(s2)

	n1 := float64(len(s1))
	n2 := float64(len(s2))

	var i, j int
	var d float64
	for i < len(s1) && j < len(s2) {
		v1, v2 := s1[i], s2[j]
		step := math.Min(v1, v2)
		for i < len(s1) && s1[i] <= step {
			i++
		}
		for j < len(s2) && s2[j] <= step {
			j++
		}
		dist := math.Abs(float64(i)/n1 - float64(j)/n2)
		if dist > d {
			d = dist
		}
	}

	ne := math.Sqrt(n1 * n2 / (n1 + n2))
	lambda := (ne + 0.12 + 0.11/ne) * d
	return &KSResult{Statistic: d, PValue: kolmogorovSurvival(lambda)}, nil
}

// kolmogorovSurvival evaluates Q_KS(lambda) = 2 * sum_{j>=1} (-1)^(j-1)
// exp(-2 j^2 lambda^2), the survival function of the Kolmogorov
// distribution, clamped to [0, 1].
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	const maxTerms = 100
	var (
		sum  float64
		sign = 1.0
		prev = math.Inf(1)
	)
	for j := 1; j <= maxTerms; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		abs := math.Abs(term)
		// Alternating series: stop once terms are negligible.
		if abs < 1e-10*math.Abs(sum) || abs >= prev {
			break
		}
		prev = abs
		sign = -sign
	}
	p := 2 * sum
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
