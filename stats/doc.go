// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stats provides the statistical primitives used by fold
// construction and fold-quality validation: descriptive statistics with
// the sampling conventions the rest of the module depends on, linear
// interpolation quantiles, a chi-square test of independence, and a
// two-sample Kolmogorov-Smirnov test.
//
// Conventions, fixed across the module:
//
//   - Standard deviation is the sample standard deviation (ddof=1).
//   - Coefficient of variation is sample std divided by mean, defined as
//     0 when the mean is 0 or when fewer than two values are present.
//   - Quantiles interpolate linearly between order statistics at rank
//     h = (n-1)*p, matching the estimator used when the fold layout was
//     originally designed, so bin boundaries reproduce exactly.
//
// All functions return an error rather than a default when a statistic
// cannot be computed. Callers that want "insufficient data" to mean a
// failed check rather than an aborted run must catch the error at their
// own level; nothing in this package silently passes.
package stats
