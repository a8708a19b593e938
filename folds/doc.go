// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package folds builds and persists stratified k-fold cross-validation
// datasets over a document corpus.
//
// Assignment is deterministic, not randomized: documents are grouped by
// normalized GAMP category, sorted by complexity score within each
// group, and dealt round-robin into the k test folds. Consecutive
// complexity ranks therefore spread across folds, which is the
// stratification mechanism. The same corpus always produces the same
// folds; reproducibility is a feature here, not an accident of seeding.
//
// The resulting Store is a self-contained JSON artifact: every fold
// carries full document metadata for both its test and train sides, so
// a downstream consumer needs nothing but the file. A Store is created
// once from a corpus snapshot and never mutated; regenerate it to
// change it.
package folds
