// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package quality validates the statistical soundness of a fold
// dataset before any expensive downstream work runs against it.
//
// Four checks cover the failure modes that matter for stratified
// cross-validation: a chi-square test that GAMP categories are
// independent of fold membership, per-fold Kolmogorov-Smirnov tests
// that complexity distributions match the pooled corpus, a
// coefficient-of-variation check on fold sizes and per-category
// counts, and a composite stratification score across the category,
// complexity-level, and domain dimensions.
//
// RunComprehensiveValidation runs all four and never aborts on an
// individual failure: a check that errors is recorded as a failed
// result so the report always describes the whole suite.
package quality
