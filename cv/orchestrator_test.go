// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaqa/cvkit/corpus"
	"github.com/pharmaqa/cvkit/folds"
)

func testStore(t *testing.T) *folds.Store {
	t.Helper()
	var docs []corpus.Document
	for ci, category := range corpus.Categories() {
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("doc-%d-%02d", ci, i)
			docs = append(docs, corpus.Document{
				DocID:             id,
				FilePath:          "/corpus/" + id + ".md",
				GAMPCategory:      string(category),
				Normalized:        category,
				SystemType:        "LIMS",
				Domain:            "Quality Control",
				ComplexityLevel:   "Medium",
				ComplexityScore:   float64(ci*5+i+1) * 0.5,
				TotalRequirements: 10,
			})
		}
	}
	store, err := folds.NewBuilder().Build(docs)
	require.NoError(t, err)
	return store
}

func constantWorkflow(tests int, rate float64) Workflow {
	return WorkflowFunc(func(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
		return &WorkflowResult{TestsGenerated: tests, SuccessRate: rate}, nil
	})
}

func TestRun_AllFoldsSucceed(t *testing.T) {
	report, err := NewOrchestrator(constantWorkflow(12, 0.9)).Run(context.Background(), testStore(t))
	require.NoError(t, err)

	require.Len(t, report.FoldRuns, 5)
	for i, run := range report.FoldRuns {
		assert.Equal(t, i+1, run.FoldNumber)
		assert.True(t, run.Succeeded())
		assert.Equal(t, 4, run.TestCount)
		assert.Equal(t, 16, run.TrainCount)
	}
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Aggregate.SuccessfulFolds)
	assert.Equal(t, 0, report.Aggregate.FailedFolds)
	assert.Equal(t, 60, report.Aggregate.TotalTestsGenerated)
	assert.Equal(t, "High", report.Aggregate.Reliability)
	// Identical outputs every fold: zero variation.
	assert.Equal(t, "High", report.Aggregate.Consistency)
}

func TestRun_FoldSpecsCarryFilePaths(t *testing.T) {
	var specs []FoldSpec
	workflow := WorkflowFunc(func(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
		specs = append(specs, spec)
		return &WorkflowResult{TestsGenerated: 1, SuccessRate: 1}, nil
	})

	_, err := NewOrchestrator(workflow).Run(context.Background(), testStore(t))
	require.NoError(t, err)

	require.Len(t, specs, 5)
	for _, spec := range specs {
		assert.Len(t, spec.TestPaths, 4)
		assert.Len(t, spec.TrainPaths, 16)
		for _, p := range spec.TestPaths {
			assert.Contains(t, p, "/corpus/")
		}
	}
}

func TestRun_FoldFailureRecordedNotFatal(t *testing.T) {
	workflow := WorkflowFunc(func(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
		if spec.FoldNumber == 3 {
			return nil, errors.New("generation blew up")
		}
		return &WorkflowResult{TestsGenerated: 10, SuccessRate: 0.8}, nil
	})

	report, err := NewOrchestrator(workflow).Run(context.Background(), testStore(t))
	require.NoError(t, err)

	require.Len(t, report.FoldRuns, 5)
	failed := report.FoldRuns[2]
	assert.Equal(t, 3, failed.FoldNumber)
	assert.False(t, failed.Succeeded())
	assert.Contains(t, failed.Error, "generation blew up")

	assert.Equal(t, 4, report.Aggregate.SuccessfulFolds)
	assert.Equal(t, 1, report.Aggregate.FailedFolds)
	// 4 of 5 folds is exactly the Medium reliability floor.
	assert.Equal(t, "Medium", report.Aggregate.Reliability)
	joined := fmt.Sprint(report.Aggregate.Recommendations)
	assert.Contains(t, joined, "fold 3 failed")
}

func TestRun_SequentialByDefault(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	workflow := WorkflowFunc(func(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := maxInFlight.Load()
			if n <= old || maxInFlight.CompareAndSwap(old, n) {
				break
			}
		}
		return &WorkflowResult{TestsGenerated: 1, SuccessRate: 1}, nil
	})

	_, err := NewOrchestrator(workflow).Run(context.Background(), testStore(t))
	require.NoError(t, err)
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	workflow := WorkflowFunc(func(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
		return nil, ctx.Err()
	})

	report, err := NewOrchestrator(workflow).Run(ctx, testStore(t))
	require.NoError(t, err)
	// Cancellation surfaces as per-fold failures, never a lost report.
	assert.Equal(t, 5, report.Aggregate.FailedFolds)
	assert.Equal(t, "Low", report.Aggregate.Reliability)
}

func TestRunReport_Save(t *testing.T) {
	report, err := NewOrchestrator(constantWorkflow(5, 1)).Run(context.Background(), testStore(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, report.Save(path))
	assert.FileExists(t, path)
}
