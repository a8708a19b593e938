// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package corpus

import (
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrUnrecognizedCategory indicates a GAMP label that matches none of
	// the normalization rules. There is deliberately no default bucket: an
	// unrecognized label is a data-quality error in the corpus, not
	// something to guess at.
	ErrUnrecognizedCategory = errors.New("unrecognized GAMP category")
)

// -----------------------------------------------------------------------------
// Normalized Categories
// -----------------------------------------------------------------------------

// NormalizedCategory is the canonical GAMP stratification key.
type NormalizedCategory string

const (
	// Category3 covers non-configured products (GAMP Category 3).
	Category3 NormalizedCategory = "Category 3"
	// Category4 covers configured products (GAMP Category 4).
	Category4 NormalizedCategory = "Category 4"
	// Category5 covers custom applications (GAMP Category 5).
	Category5 NormalizedCategory = "Category 5"
	// Ambiguous covers documents whose raw label spans categories,
	// e.g. "Category 4/5". Ambiguity is preserved as its own stratum
	// rather than resolved arbitrarily.
	Ambiguous NormalizedCategory = "Ambiguous"
)

// Categories lists all normalized categories in their canonical order.
// The order is load-bearing: fold assignment iterates strata in this
// order so the same corpus always produces the same folds.
func Categories() []NormalizedCategory {
	return []NormalizedCategory{Category3, Category4, Category5, Ambiguous}
}

// Valid reports whether c is one of the four canonical categories.
func (c NormalizedCategory) Valid() bool {
	switch c {
	case Category3, Category4, Category5, Ambiguous:
		return true
	}
	return false
}

// NormalizeCategory maps a raw GAMP label to its canonical category.
//
// Matching is case-insensitive substring matching, checked in order:
//
//	"ambiguous" or "/"  -> Ambiguous   (before the digit rules, so
//	                                    "Category 4/5" lands here)
//	"3"                 -> Category 3
//	"configured" or "4" -> Category 4
//	"custom" or "5"     -> Category 5
//
// A label matching none of the rules returns ErrUnrecognizedCategory
// wrapped with the original label text.
func NormalizeCategory(raw string) (NormalizedCategory, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case label == "":
		return "", fmt.Errorf("%w: empty label", ErrUnrecognizedCategory)
	case label == "n/a", label == "na", label == "none":
		// Null markers carry a slash but are absent data, not a split
		// category.
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedCategory, raw)
	case strings.Contains(label, "ambiguous"), strings.Contains(label, "/"):
		return Ambiguous, nil
	case strings.Contains(label, "3"):
		return Category3, nil
	case strings.Contains(label, "configured"), strings.Contains(label, "4"):
		return Category4, nil
	case strings.Contains(label, "custom"), strings.Contains(label, "5"):
		return Category5, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedCategory, raw)
	}
}
