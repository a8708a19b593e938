// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cv

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pharmaqa/cvkit/folds"
)

// RunReport is the persisted record of one cross-validation run.
type RunReport struct {
	RunID       string         `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	DatasetInfo map[string]any `json:"dataset_info"`
	FoldRuns    []*FoldRun     `json:"fold_runs"`
	Aggregate   Aggregate      `json:"aggregate"`
}

func buildRunReport(runID string, startedAt time.Time, store *folds.Store, runs []*FoldRun) *RunReport {
	return &RunReport{
		RunID:       runID,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
		DatasetInfo: map[string]any{
			"total_documents":       store.Metadata.TotalDocuments,
			"folds":                 store.Metadata.Folds,
			"stratification_method": store.Metadata.StratificationMethod,
		},
		FoldRuns:  runs,
		Aggregate: aggregate(runs),
	}
}

// Save writes the report as indented JSON at path.
func (r *RunReport) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report to %s: %w", path, err)
	}
	return nil
}
