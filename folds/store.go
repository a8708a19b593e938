// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package folds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pharmaqa/cvkit/corpus"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrFoldNotFound indicates a request for a fold number the store does
	// not contain.
	ErrFoldNotFound = errors.New("fold not found")

	// ErrCorruptStore indicates a loaded dataset file that violates the
	// partition invariants. A corrupt store is never partially usable.
	ErrCorruptStore = errors.New("corrupt fold store")
)

// -----------------------------------------------------------------------------
// Store Structure
// -----------------------------------------------------------------------------

// ComplexityRange summarizes the corpus complexity distribution.
type ComplexityRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Metadata describes the dataset as a whole.
type Metadata struct {
	Description          string          `json:"description"`
	CreatedAt            time.Time       `json:"created_at"`
	TotalDocuments       int             `json:"total_documents"`
	TotalRequirements    int             `json:"total_requirements"`
	Folds                int             `json:"folds"`
	NumBins              int             `json:"num_bins"`
	StratificationMethod string          `json:"stratification_method"`
	ComplexityRange      ComplexityRange `json:"complexity_range"`
	CategoryDistribution map[string]int  `json:"category_distribution"`
}

// Assignment is one fold's test/train split. Both sides carry full
// document metadata so the file stands alone.
type Assignment struct {
	FoldNumber     int               `json:"fold_number"`
	TestDocuments  []corpus.Document `json:"test_documents"`
	TrainDocuments []corpus.Document `json:"train_documents"`
	TestCount      int               `json:"test_count"`
	TrainCount     int               `json:"train_count"`
}

// Store is the persisted fold dataset. It is written once by Builder
// and read back by validators and orchestrators; it is never mutated.
type Store struct {
	Metadata          Metadata               `json:"metadata"`
	DocumentInventory []string               `json:"document_inventory"`
	Folds             map[string]*Assignment `json:"folds"`
	ValidationSummary map[string]string      `json:"validation_summary"`
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// GetFold returns the assignment for fold number n (1-based).
func (s *Store) GetFold(n int) (*Assignment, error) {
	a, ok := s.Folds[foldKey(n)]
	if !ok {
		return nil, fmt.Errorf("%w: fold %d (store has %d folds)", ErrFoldNotFound, n, s.Metadata.Folds)
	}
	return a, nil
}

// Assignments returns every fold in fold-number order.
func (s *Store) Assignments() []*Assignment {
	out := make([]*Assignment, 0, len(s.Folds))
	for _, a := range s.Folds {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FoldNumber < out[j].FoldNumber })
	return out
}

// AllDocuments returns the full corpus reconstructed from the test
// sides, which together form an exact partition of it. Documents come
// back sorted by id.
func (s *Store) AllDocuments() []corpus.Document {
	var docs []corpus.Document
	for _, a := range s.Assignments() {
		docs = append(docs, a.TestDocuments...)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].DocID < docs[j].DocID })
	return docs
}

// -----------------------------------------------------------------------------
// Persistence
// -----------------------------------------------------------------------------

// Save writes the store as indented JSON at path.
func (s *Store) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling fold store: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing fold store to %s: %w", path, err)
	}
	return nil
}

// Load reads a store from path and verifies its partition invariants.
// A file that fails validation is rejected outright.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fold store from %s: %w", path, err)
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing fold store %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// validate checks the invariants a freshly built store satisfies by
// construction: fold count and keys, count fields, document validity,
// and that test sides partition the inventory exactly.
func (s *Store) validate() error {
	if s.Metadata.Folds < 2 {
		return fmt.Errorf("%w: metadata declares %d folds", ErrCorruptStore, s.Metadata.Folds)
	}
	if len(s.Folds) != s.Metadata.Folds {
		return fmt.Errorf("%w: metadata declares %d folds, file has %d", ErrCorruptStore, s.Metadata.Folds, len(s.Folds))
	}

	seen := make(map[string]int, s.Metadata.TotalDocuments)
	for n := 1; n <= s.Metadata.Folds; n++ {
		a, ok := s.Folds[foldKey(n)]
		if !ok {
			return fmt.Errorf("%w: missing key %q", ErrCorruptStore, foldKey(n))
		}
		if a.FoldNumber != n {
			return fmt.Errorf("%w: key %q carries fold_number %d", ErrCorruptStore, foldKey(n), a.FoldNumber)
		}
		if a.TestCount != len(a.TestDocuments) || a.TrainCount != len(a.TrainDocuments) {
			return fmt.Errorf("%w: fold %d counts disagree with document lists", ErrCorruptStore, n)
		}
		if a.TestCount+a.TrainCount != s.Metadata.TotalDocuments {
			return fmt.Errorf("%w: fold %d covers %d documents, metadata declares %d",
				ErrCorruptStore, n, a.TestCount+a.TrainCount, s.Metadata.TotalDocuments)
		}
		for i := range a.TestDocuments {
			if err := a.TestDocuments[i].Validate(); err != nil {
				return fmt.Errorf("%w: fold %d test document: %v", ErrCorruptStore, n, err)
			}
			seen[a.TestDocuments[i].DocID]++
		}
		for i := range a.TrainDocuments {
			if err := a.TrainDocuments[i].Validate(); err != nil {
				return fmt.Errorf("%w: fold %d train document: %v", ErrCorruptStore, n, err)
			}
		}
	}

	if len(seen) != len(s.DocumentInventory) {
		return fmt.Errorf("%w: test folds cover %d documents, inventory lists %d",
			ErrCorruptStore, len(seen), len(s.DocumentInventory))
	}
	for _, id := range s.DocumentInventory {
		switch seen[id] {
		case 1:
			// exactly one test fold, as required
		case 0:
			return fmt.Errorf("%w: document %q appears in no test fold", ErrCorruptStore, id)
		default:
			return fmt.Errorf("%w: document %q appears in %d test folds", ErrCorruptStore, id, seen[id])
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func foldKey(n int) string {
	return fmt.Sprintf("fold_%d", n)
}

func sortedIDs(docs []corpus.Document) []string {
	ids := corpus.DocIDs(docs)
	sort.Strings(ids)
	return ids
}
