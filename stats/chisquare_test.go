// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"
	"math"
	"testing"
)

func TestChiSquareIndependence(t *testing.T) {
	t.Run("uniform table has statistic zero", func(t *testing.T) {
		observed := [][]float64{
			{1, 1, 1, 1, 1},
			{1, 1, 1, 1, 1},
			{1, 1, 1, 1, 1},
			{1, 1, 1, 1, 1},
		}
		result, err := ChiSquareIndependence(observed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Statistic != 0 {
			t.Errorf("expected statistic 0, got %v", result.Statistic)
		}
		if math.Abs(result.PValue-1.0) > 1e-9 {
			t.Errorf("expected p-value 1, got %v", result.PValue)
		}
		if result.DegreesOfFreedom != 12 {
			t.Errorf("expected df=12 for 4x5 table, got %d", result.DegreesOfFreedom)
		}
	})

	t.Run("known 2x2 table", func(t *testing.T) {
		// Classic example: statistic = sum (o-e)^2/e.
		observed := [][]float64{
			{10, 20},
			{30, 40},
		}
		result, err := ChiSquareIndependence(observed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Expected counts: 12, 18, 28, 42.
		want := math.Pow(10-12, 2)/12 + math.Pow(20-18, 2)/18 +
			math.Pow(30-28, 2)/28 + math.Pow(40-42, 2)/42
		if math.Abs(result.Statistic-want) > 1e-12 {
			t.Errorf("statistic = %v, want %v", result.Statistic, want)
		}
		if result.DegreesOfFreedom != 1 {
			t.Errorf("expected df=1, got %d", result.DegreesOfFreedom)
		}
		if result.PValue <= 0 || result.PValue >= 1 {
			t.Errorf("p-value %v outside (0, 1)", result.PValue)
		}
	})

	t.Run("strong association yields small p", func(t *testing.T) {
		observed := [][]float64{
			{50, 0},
			{0, 50},
		}
		result, err := ChiSquareIndependence(observed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PValue > 1e-6 {
			t.Errorf("expected tiny p-value for perfect association, got %v", result.PValue)
		}
	})

	t.Run("zero row total errors", func(t *testing.T) {
		observed := [][]float64{
			{1, 2},
			{0, 0},
		}
		_, err := ChiSquareIndependence(observed)
		if !errors.Is(err, ErrDegenerateTable) {
			t.Errorf("expected ErrDegenerateTable, got %v", err)
		}
	})

	t.Run("zero column total errors", func(t *testing.T) {
		observed := [][]float64{
			{1, 0},
			{2, 0},
		}
		_, err := ChiSquareIndependence(observed)
		if !errors.Is(err, ErrDegenerateTable) {
			t.Errorf("expected ErrDegenerateTable, got %v", err)
		}
	})

	t.Run("single row errors", func(t *testing.T) {
		_, err := ChiSquareIndependence([][]float64{{1, 2, 3}})
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("ragged table errors", func(t *testing.T) {
		_, err := ChiSquareIndependence([][]float64{{1, 2}, {3}})
		if err == nil {
			t.Error("expected error for ragged table")
		}
	})
}
