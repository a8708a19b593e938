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

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingMetadata indicates a document header lacking one of the
	// mandatory fields.
	ErrMissingMetadata = errors.New("missing required document metadata")
)

// docValidate is the shared validator instance for document structs.
var docValidate = validator.New(validator.WithRequiredStructEnabled())

// Document is one unit of the corpus.
//
// All four descriptive fields (GAMPCategory, SystemType, Domain,
// ComplexityLevel) are mandatory; a Document missing any of them never
// leaves the loader. A Document with zero requirements is valid as long
// as the metadata is present.
//
// The JSON field names are the persisted fold-file contract; changing
// them breaks every stored fold assignment.
type Document struct {
	DocID                string             `json:"doc_id" validate:"required"`
	FilePath             string             `json:"file_path" validate:"required"`
	GAMPCategory         string             `json:"gamp_category" validate:"required"`
	Normalized           NormalizedCategory `json:"normalized_category" validate:"required"`
	SystemType           string             `json:"system_type" validate:"required"`
	Domain               string             `json:"domain" validate:"required"`
	ComplexityLevel      string             `json:"complexity_level" validate:"required"`
	ComplexityScore      float64            `json:"complexity_score"`
	TotalRequirements    int                `json:"total_requirements" validate:"gte=0"`
	RequirementBreakdown map[string]int     `json:"requirement_breakdown"`
}

// Validate checks the document invariants: mandatory fields present and
// the normalized category one of the four canonical values.
func (d *Document) Validate() error {
	if err := docValidate.Struct(d); err != nil {
		return fmt.Errorf("%w: document %q: %v", ErrMissingMetadata, d.DocID, err)
	}
	if !d.Normalized.Valid() {
		return fmt.Errorf("%w: %q (document %q)", ErrUnrecognizedCategory, d.Normalized, d.DocID)
	}
	return nil
}

// DocIDs returns the ids of the given documents, in order.
func DocIDs(docs []Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.DocID
	}
	return ids
}

// ComplexityScores returns the complexity scores of the given documents,
// in order.
func ComplexityScores(docs []Document) []float64 {
	scores := make([]float64, len(docs))
	for i, d := range docs {
		scores[i] = d.ComplexityScore
	}
	return scores
}

// FilePaths returns the source file paths of the given documents, in
// order.
func FilePaths(docs []Document) []string {
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.FilePath
	}
	return paths
}
