// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `---
gamp_category: "Category 4"
system_type: "Laboratory Information Management System"
domain: "Quality Control"
complexity_level: "Medium"
---
# Functional Requirements

- URS-001: The system shall record sample receipt.
- URS-002: The system shall track chain of custody.

## Regulatory Requirements

- URS-003: The system shall maintain audit trails per 21 CFR Part 11.
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "URS-LIMS-01.md", validDoc)

	doc, err := LoadDocument(path, NewHeuristicScorer())
	require.NoError(t, err)

	assert.Equal(t, "URS-LIMS-01", doc.DocID)
	assert.Equal(t, "Category 4", doc.GAMPCategory)
	assert.Equal(t, Category4, doc.Normalized)
	assert.Equal(t, "Quality Control", doc.Domain)
	assert.Equal(t, "Medium", doc.ComplexityLevel)
	assert.Equal(t, 3, doc.TotalRequirements)
	assert.Equal(t, 2, doc.RequirementBreakdown["functional"])
	assert.Equal(t, 1, doc.RequirementBreakdown["regulatory"])
	assert.Greater(t, doc.ComplexityScore, 0.0)
}

func TestLoadDocument_MissingMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "bad.md", `---
gamp_category: "Category 3"
system_type: "Spreadsheet"
---
- URS-001: something
`)

	_, err := LoadDocument(path, NewHeuristicScorer())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingMetadata)
	assert.Contains(t, err.Error(), "domain")
	assert.Contains(t, err.Error(), "complexity_level")
	assert.Contains(t, err.Error(), "bad")
}

func TestLoadDocument_UnrecognizedCategory(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "hybrid.md", `---
gamp_category: "Hybrid System"
system_type: "X"
domain: "Y"
complexity_level: "Low"
---
- URS-001: something
`)

	_, err := LoadDocument(path, NewHeuristicScorer())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedCategory)
	assert.Contains(t, err.Error(), "Hybrid System")
}

func TestLoadDocument_EmptyBody(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "empty.md", `---
gamp_category: "Category 3"
system_type: "X"
domain: "Y"
complexity_level: "Low"
---
`)

	_, err := LoadDocument(path, NewHeuristicScorer())
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLoadDocument_NoFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "plain.md", "# Just a document\n- URS-001: no header\n")

	_, err := LoadDocument(path, NewHeuristicScorer())
	assert.ErrorIs(t, err, ErrNoFrontMatter)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b-doc.md", validDoc)
	writeDoc(t, dir, "a-doc.md", validDoc)
	writeDoc(t, dir, "ignored.txt", "not markdown")

	docs, err := Load(dir, NewHeuristicScorer(), nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Deterministic, name-sorted order.
	assert.Equal(t, "a-doc", docs[0].DocID)
	assert.Equal(t, "b-doc", docs[1].DocID)
}

func TestLoad_FailsOnSingleBadDocument(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "good.md", validDoc)
	writeDoc(t, dir, "bad.md", "no front matter at all")

	_, err := Load(dir, NewHeuristicScorer(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir(), NewHeuristicScorer(), nil)
	require.Error(t, err)
}

func TestHeuristicScorer_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", validDoc)

	scorer := NewHeuristicScorer()
	first, err := scorer.AnalyzeDocument(path)
	require.NoError(t, err)
	second, err := scorer.AnalyzeDocument(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHeuristicScorer_SectionWeights(t *testing.T) {
	scorer := NewHeuristicScorer()
	functional := scorer.analyze("## Functional Requirements\n- URS-001: a\n")
	regulatory := scorer.analyze("## Regulatory Requirements\n- URS-001: a\n")

	assert.Equal(t, 1, functional.RequirementCounts.Total)
	assert.Equal(t, 1, regulatory.RequirementCounts.Total)
	// Regulatory requirements weigh more than functional ones.
	assert.Greater(t, regulatory.CompositeScore, functional.CompositeScore)
}

func TestDocumentValidate(t *testing.T) {
	doc := Document{
		DocID:           "d1",
		FilePath:        "/tmp/d1.md",
		GAMPCategory:    "Category 5",
		Normalized:      Category5,
		SystemType:      "Custom",
		Domain:          "Manufacturing",
		ComplexityLevel: "High",
	}
	// Zero requirements is still a valid document.
	require.NoError(t, doc.Validate())

	doc.SystemType = ""
	assert.Error(t, doc.Validate())
}
