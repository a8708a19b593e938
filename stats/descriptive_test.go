// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	t.Run("empty sample", func(t *testing.T) {
		if got := Mean(nil); got != 0 {
			t.Errorf("expected 0 for empty sample, got %v", got)
		}
	})

	t.Run("simple mean", func(t *testing.T) {
		got := Mean([]float64{1, 2, 3, 4})
		if math.Abs(got-2.5) > 1e-12 {
			t.Errorf("expected 2.5, got %v", got)
		}
	})
}

func TestStdDev(t *testing.T) {
	t.Run("fewer than two values", func(t *testing.T) {
		if got := StdDev([]float64{7}); got != 0 {
			t.Errorf("expected 0 for single value, got %v", got)
		}
	})

	t.Run("sample convention ddof=1", func(t *testing.T) {
		// Variance of {2,4,4,4,5,5,7,9} is 4 with ddof=0, 32/7 with ddof=1.
		got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		want := math.Sqrt(32.0 / 7.0)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestCoefficientOfVariation(t *testing.T) {
	t.Run("constant sample is zero", func(t *testing.T) {
		for _, n := range []int{2, 5, 50} {
			values := make([]float64, n)
			for i := range values {
				values[i] = 4.2
			}
			if got := CoefficientOfVariation(values); got != 0 {
				t.Errorf("n=%d: expected 0 for constant sample, got %v", n, got)
			}
		}
	})

	t.Run("empty and singleton are zero", func(t *testing.T) {
		if got := CoefficientOfVariation(nil); got != 0 {
			t.Errorf("expected 0 for empty sample, got %v", got)
		}
		if got := CoefficientOfVariation([]float64{3.14}); got != 0 {
			t.Errorf("expected 0 for singleton, got %v", got)
		}
	})

	t.Run("zero mean is zero", func(t *testing.T) {
		if got := CoefficientOfVariation([]float64{-1, 1}); got != 0 {
			t.Errorf("expected 0 for zero-mean sample, got %v", got)
		}
	})

	t.Run("known value", func(t *testing.T) {
		// mean=4, sample std=sqrt(2/3)*... compute: {3,4,5}: std=1, cv=0.25.
		got := CoefficientOfVariation([]float64{3, 4, 5})
		if math.Abs(got-0.25) > 1e-12 {
			t.Errorf("expected 0.25, got %v", got)
		}
	})
}

func TestMinMax(t *testing.T) {
	min, max, err := MinMax([]float64{3, -1, 7, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if min != -1 || max != 7 {
		t.Errorf("expected (-1, 7), got (%v, %v)", min, max)
	}

	if _, _, err := MinMax(nil); err == nil {
		t.Error("expected error for empty sample")
	}
}
