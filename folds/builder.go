// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package folds

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pharmaqa/cvkit/corpus"
	"github.com/pharmaqa/cvkit/stats"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInsufficientDocuments indicates too few documents for the
	// requested fold or bin count.
	ErrInsufficientDocuments = errors.New("insufficient documents")

	// ErrCountMismatch indicates documents lost or duplicated during
	// binning or fold assignment. This is an invariant violation, never
	// something to repair silently.
	ErrCountMismatch = errors.New("document count mismatch")

	// ErrDuplicateDocument indicates two corpus documents sharing an id.
	ErrDuplicateDocument = errors.New("duplicate document id")
)

// -----------------------------------------------------------------------------
// Builder
// -----------------------------------------------------------------------------

// Builder constructs a fold Store from a corpus.
type Builder struct {
	folds   int
	numBins int
	logger  *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFoldCount sets the number of folds k. Default: 5.
func WithFoldCount(k int) BuilderOption {
	return func(b *Builder) { b.folds = k }
}

// WithBinCount sets the number of complexity bins. Default: 3.
func WithBinCount(n int) BuilderOption {
	return func(b *Builder) { b.numBins = n }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder returns a Builder with the given options applied.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		folds:   5,
		numBins: 3,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assigns every corpus document to exactly one test fold and
// produces the persisted Store structure.
//
// Inputs:
//   - docs: The corpus snapshot. Every document must already be valid
//     (the loader guarantees this); Build re-checks and fails fast on a
//     bad document rather than producing a dubious dataset.
//
// Outputs:
//   - *Store: The complete fold assignment artifact.
//   - error: Non-nil on insufficient documents, invalid documents,
//     duplicate ids, or any partition-invariant violation. Build never
//     repairs data.
func (b *Builder) Build(docs []corpus.Document) (*Store, error) {
	if b.folds < 2 {
		return nil, fmt.Errorf("fold count must be at least 2, got %d", b.folds)
	}
	if len(docs) < b.folds {
		return nil, fmt.Errorf("%w: %d documents for %d folds", ErrInsufficientDocuments, len(docs), b.folds)
	}

	seen := make(map[string]bool, len(docs))
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return nil, err
		}
		if seen[docs[i].DocID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDocument, docs[i].DocID)
		}
		seen[docs[i].DocID] = true
	}

	// Work on copies with scores rounded to the persisted precision, so
	// the metadata statistics match what a reader of the JSON recomputes.
	rounded := make([]corpus.Document, len(docs))
	for i, d := range docs {
		d.ComplexityScore = round4(d.ComplexityScore)
		rounded[i] = d
	}

	// Complexity binning is part of the dataset description; it also
	// front-loads the "enough spread to stratify" check.
	bins, err := BinByComplexity(rounded, b.numBins)
	if err != nil {
		return nil, err
	}

	testSets, err := b.assignRoundRobin(rounded)
	if err != nil {
		return nil, err
	}
	b.warnOnConcentration(rounded, testSets)

	assignments := make(map[string]*Assignment, b.folds)
	for f := 0; f < b.folds; f++ {
		test := testSets[f]
		inTest := make(map[string]bool, len(test))
		for _, d := range test {
			inTest[d.DocID] = true
		}
		train := make([]corpus.Document, 0, len(rounded)-len(test))
		for _, d := range rounded {
			if !inTest[d.DocID] {
				train = append(train, d)
			}
		}
		assignments[foldKey(f+1)] = &Assignment{
			FoldNumber:     f + 1,
			TestDocuments:  test,
			TrainDocuments: train,
			TestCount:      len(test),
			TrainCount:     len(train),
		}
	}

	store := &Store{
		Metadata:          b.buildMetadata(rounded),
		DocumentInventory: sortedIDs(rounded),
		Folds:             assignments,
		ValidationSummary: b.buildSummary(rounded, testSets, bins),
	}

	b.logger.Info("fold assignment complete",
		"documents", len(rounded),
		"folds", b.folds,
		"bins", b.numBins,
	)
	return store, nil
}

// assignRoundRobin deals documents into k test sets: group by category,
// sort each group by complexity (doc id as tie-break), round-robin.
func (b *Builder) assignRoundRobin(docs []corpus.Document) ([][]corpus.Document, error) {
	groups := make(map[corpus.NormalizedCategory][]corpus.Document)
	for _, d := range docs {
		groups[d.Normalized] = append(groups[d.Normalized], d)
	}

	testSets := make([][]corpus.Document, b.folds)
	for _, category := range corpus.Categories() {
		group := groups[category]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].ComplexityScore != group[j].ComplexityScore {
				return group[i].ComplexityScore < group[j].ComplexityScore
			}
			return group[i].DocID < group[j].DocID
		})
		for i, d := range group {
			f := i % b.folds
			testSets[f] = append(testSets[f], d)
		}
	}

	if err := b.verifyPartition(docs, testSets); err != nil {
		return nil, err
	}
	return testSets, nil
}

// verifyPartition checks that the test sets form an exact partition of
// the corpus: every document exactly once, nothing extra.
func (b *Builder) verifyPartition(docs []corpus.Document, testSets [][]corpus.Document) error {
	counts := make(map[string]int, len(docs))
	total := 0
	for _, set := range testSets {
		for _, d := range set {
			counts[d.DocID]++
			total++
		}
	}
	if total != len(docs) {
		return fmt.Errorf("%w: %d documents assigned, corpus has %d", ErrCountMismatch, total, len(docs))
	}

	var missing, duplicated []string
	for _, d := range docs {
		switch counts[d.DocID] {
		case 0:
			missing = append(missing, d.DocID)
		case 1:
			// exactly once, as required
		default:
			duplicated = append(duplicated, d.DocID)
		}
	}
	if len(missing) > 0 || len(duplicated) > 0 {
		return fmt.Errorf("%w: missing=%v duplicated=%v", ErrCountMismatch, missing, duplicated)
	}
	return nil
}

// warnOnConcentration logs (non-fatally) when an entire category landed
// in a single fold's test set. With round-robin this only happens for
// categories with fewer documents than folds, but it still degrades the
// stratification guarantees the validator checks for.
func (b *Builder) warnOnConcentration(docs []corpus.Document, testSets [][]corpus.Document) {
	if b.folds < 2 {
		return
	}
	for _, category := range corpus.Categories() {
		var total int
		foldsHit := 0
		for _, set := range testSets {
			n := 0
			for _, d := range set {
				if d.Normalized == category {
					n++
				}
			}
			if n > 0 {
				foldsHit++
			}
			total += n
		}
		if total > 0 && foldsHit == 1 {
			b.logger.Warn("category concentrated in a single fold",
				"category", string(category),
				"documents", total,
			)
		}
	}
}

// buildMetadata computes the summary statistics block.
func (b *Builder) buildMetadata(docs []corpus.Document) Metadata {
	scores := corpus.ComplexityScores(docs)
	min, max, _ := stats.MinMax(scores)

	totalReqs := 0
	categories := make(map[string]int)
	for _, d := range docs {
		totalReqs += d.TotalRequirements
		categories[string(d.Normalized)]++
	}

	return Metadata{
		Description:          "Stratified k-fold cross-validation dataset",
		CreatedAt:            time.Now().UTC(),
		TotalDocuments:       len(docs),
		TotalRequirements:    totalReqs,
		Folds:                b.folds,
		NumBins:              b.numBins,
		StratificationMethod: "category complexity-sorted round-robin",
		ComplexityRange: ComplexityRange{
			Min:  round4(min),
			Max:  round4(max),
			Mean: round4(stats.Mean(scores)),
			Std:  round4(stats.StdDev(scores)),
		},
		CategoryDistribution: categories,
	}
}

// buildSummary writes the free-text invariant notes embedded in the
// artifact for human reviewers.
func (b *Builder) buildSummary(docs []corpus.Document, testSets [][]corpus.Document, bins []ComplexityBin) map[string]string {
	sizes := make([]string, len(testSets))
	for i, set := range testSets {
		sizes[i] = fmt.Sprintf("%d", len(set))
	}
	binNotes := make([]string, len(bins))
	for i, bin := range bins {
		binNotes[i] = fmt.Sprintf("%s=%d", bin.Label, len(bin.Documents))
	}
	return map[string]string{
		"coverage": fmt.Sprintf("all %d documents appear in exactly one test fold", len(docs)),
		"balance":  fmt.Sprintf("test fold sizes: [%s]", strings.Join(sizes, ", ")),
		"binning":  fmt.Sprintf("complexity bins (%d quantile intervals): %s", b.numBins, strings.Join(binNotes, ", ")),
	}
}

// -----------------------------------------------------------------------------
// Complexity Binning
// -----------------------------------------------------------------------------

// ComplexityBin is one quantile interval of the complexity distribution.
type ComplexityBin struct {
	// Label identifies the bin ("bin_1" .. "bin_N"), ordered low to high.
	Label string

	// Low and High are the interval boundaries. The first bin is closed
	// on both sides [Low, High]; every other bin is half-open (Low, High].
	Low  float64
	High float64

	// Documents are the corpus documents whose score falls in the bin.
	Documents []corpus.Document
}

// BinByComplexity splits documents into numBins quantile bins over their
// complexity scores.
//
// Boundaries are the linear-interpolation quantiles at 0, 1/n, ..., 1.
// Every document lands in exactly one bin; the function verifies count
// conservation and errors on any mismatch rather than adjusting.
// Requires len(docs) >= numBins.
func BinByComplexity(docs []corpus.Document, numBins int) ([]ComplexityBin, error) {
	if numBins < 1 {
		return nil, fmt.Errorf("bin count must be positive, got %d", numBins)
	}
	if len(docs) < numBins {
		return nil, fmt.Errorf("%w: %d documents for %d bins", ErrInsufficientDocuments, len(docs), numBins)
	}

	bounds, err := stats.QuantileBoundaries(corpus.ComplexityScores(docs), numBins)
	if err != nil {
		return nil, err
	}

	bins := make([]ComplexityBin, numBins)
	for i := range bins {
		bins[i] = ComplexityBin{
			Label: fmt.Sprintf("bin_%d", i+1),
			Low:   bounds[i],
			High:  bounds[i+1],
		}
	}

	for _, d := range docs {
		idx := -1
		if d.ComplexityScore >= bounds[0] && d.ComplexityScore <= bounds[1] {
			idx = 0
		} else {
			for i := 1; i < numBins; i++ {
				if d.ComplexityScore > bounds[i] && d.ComplexityScore <= bounds[i+1] {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: document %q (score %v) fell outside every bin",
				ErrCountMismatch, d.DocID, d.ComplexityScore)
		}
		bins[idx].Documents = append(bins[idx].Documents, d)
	}

	assigned := 0
	for _, bin := range bins {
		assigned += len(bin.Documents)
	}
	if assigned != len(docs) {
		return nil, fmt.Errorf("%w: %d documents binned, corpus has %d", ErrCountMismatch, assigned, len(docs))
	}
	return bins, nil
}

// round4 rounds to the 4-decimal precision used in the persisted file.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
