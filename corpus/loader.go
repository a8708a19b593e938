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
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDocument indicates a document with a header but no content.
	ErrEmptyDocument = errors.New("document has no content")

	// ErrNoFrontMatter indicates a document without the YAML metadata
	// header block.
	ErrNoFrontMatter = errors.New("document has no metadata header")
)

// docHeader is the YAML front matter every corpus document must carry.
//
// Example:
//
//	---
//	gamp_category: "Category 4"
//	system_type: "Laboratory Information Management System"
//	domain: "Quality Control"
//	complexity_level: "Medium"
//	---
type docHeader struct {
	GAMPCategory    string `yaml:"gamp_category"`
	SystemType      string `yaml:"system_type"`
	Domain          string `yaml:"domain"`
	ComplexityLevel string `yaml:"complexity_level"`
}

// validate enforces the mandatory-metadata rule with the offending field
// named in the error.
func (h *docHeader) validate(docID string) error {
	missing := []string{}
	if strings.TrimSpace(h.GAMPCategory) == "" {
		missing = append(missing, "gamp_category")
	}
	if strings.TrimSpace(h.SystemType) == "" {
		missing = append(missing, "system_type")
	}
	if strings.TrimSpace(h.Domain) == "" {
		missing = append(missing, "domain")
	}
	if strings.TrimSpace(h.ComplexityLevel) == "" {
		missing = append(missing, "complexity_level")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: document %q missing %s", ErrMissingMetadata, docID, strings.Join(missing, ", "))
	}
	return nil
}

// LoadDocument loads and scores a single corpus document.
//
// The file must carry YAML front matter with the four mandatory fields
// and non-empty body content. Any violation is an error naming the
// document; there is no partial or defaulted load.
func LoadDocument(path string, scorer ComplexityScorer) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}

	docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	header, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", docID, err)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDocument, docID)
	}

	var meta docHeader
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return nil, fmt.Errorf("document %q: parse metadata header: %w", docID, err)
	}
	if err := meta.validate(docID); err != nil {
		return nil, err
	}

	normalized, err := NormalizeCategory(meta.GAMPCategory)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", docID, err)
	}

	report, err := scorer.AnalyzeDocument(path)
	if err != nil {
		return nil, fmt.Errorf("score document %q: %w", docID, err)
	}

	doc := &Document{
		DocID:                docID,
		FilePath:             path,
		GAMPCategory:         meta.GAMPCategory,
		Normalized:           normalized,
		SystemType:           meta.SystemType,
		Domain:               meta.Domain,
		ComplexityLevel:      meta.ComplexityLevel,
		ComplexityScore:      report.CompositeScore,
		TotalRequirements:    report.RequirementCounts.Total,
		RequirementBreakdown: report.RequirementCounts.Breakdown,
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load loads every markdown document under dir, sorted by file name so
// the corpus order (and everything derived from it) is reproducible.
//
// A single bad document fails the whole load. A dataset snapshot with a
// corrupt member is not a smaller dataset, it is a broken one.
func Load(dir string, scorer ComplexityScorer, logger *slog.Logger) ([]Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no corpus documents (*.md) found in %s", dir)
	}

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadDocument(path, scorer)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	logger.Info("corpus loaded",
		"dir", dir,
		"documents", len(docs),
	)
	return docs, nil
}

// splitFrontMatter separates the YAML header from the document body.
// The header must open with "---" on the first line and close with a
// bare "---" line.
func splitFrontMatter(content string) (header, body string, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", "", ErrNoFrontMatter
	}
	rest := normalized[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", "", fmt.Errorf("%w: unterminated header", ErrNoFrontMatter)
	}
	header = rest[:idx]
	body = rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return header, body, nil
}
