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
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pharmaqa/cvkit/corpus"
	"github.com/pharmaqa/cvkit/folds"
)

// ErrNoFolds indicates a store with nothing to run.
var ErrNoFolds = errors.New("no folds to run")

// -----------------------------------------------------------------------------
// Orchestrator
// -----------------------------------------------------------------------------

// FoldRun is the recorded outcome of one fold's workflow execution.
type FoldRun struct {
	FoldNumber int             `json:"fold_number"`
	TestCount  int             `json:"test_count"`
	TrainCount int             `json:"train_count"`
	Result     *WorkflowResult `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	Duration   time.Duration   `json:"duration"`
}

// Succeeded reports whether the fold's workflow completed.
func (r *FoldRun) Succeeded() bool {
	return r.Error == "" && r.Result != nil
}

// Orchestrator drives a Workflow across every fold of a store.
type Orchestrator struct {
	workflow    Workflow
	logger      *slog.Logger
	limiter     *rate.Limiter
	parallelism int
	foldTimeout time.Duration
	settings    map[string]string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithParallelism allows up to n folds in flight at once. Default: 1,
// strictly sequential, which keeps fold timings comparable.
func WithParallelism(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithRateLimit caps fold launches at r per second. Default: unlimited.
func WithRateLimit(r rate.Limit) OrchestratorOption {
	return func(o *Orchestrator) { o.limiter = rate.NewLimiter(r, 1) }
}

// WithFoldTimeout bounds each fold's execution. Default: no timeout
// beyond the run context.
func WithFoldTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.foldTimeout = d }
}

// WithSettings passes free-form settings through to every FoldSpec.
func WithSettings(settings map[string]string) OrchestratorOption {
	return func(o *Orchestrator) { o.settings = settings }
}

// WithOrchestratorLogger sets the logger. Default: slog.Default().
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator returns an Orchestrator driving workflow.
func NewOrchestrator(workflow Workflow, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		workflow:    workflow,
		logger:      slog.Default(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the workflow over every fold in store and returns the
// aggregated report. Individual fold failures are recorded, not fatal;
// Run itself errors only on an empty store or a canceled context.
func (o *Orchestrator) Run(ctx context.Context, store *folds.Store) (*RunReport, error) {
	assignments := store.Assignments()
	if len(assignments) == 0 {
		return nil, ErrNoFolds
	}

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	o.logger.Info("cross-validation run starting",
		"run_id", runID,
		"folds", len(assignments),
		"parallelism", o.parallelism,
	)

	tracer := otel.Tracer("cvkit/cv")
	ctx, span := tracer.Start(ctx, "cv.run")
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.folds", len(assignments)),
	)
	defer span.End()

	var mu sync.Mutex
	runs := make([]*FoldRun, 0, len(assignments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for _, a := range assignments {
		g.Go(func() error {
			if o.limiter != nil {
				if err := o.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			run := o.runFold(gctx, tracer, a)
			mu.Lock()
			runs = append(runs, run)
			mu.Unlock()
			// Fold failures are data, not run failures.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("cross-validation run %s: %w", runID, err)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].FoldNumber < runs[j].FoldNumber })
	report := buildRunReport(runID, startedAt, store, runs)
	o.logger.Info("cross-validation run complete",
		"run_id", runID,
		"successful_folds", report.Aggregate.SuccessfulFolds,
		"failed_folds", report.Aggregate.FailedFolds,
		"duration", time.Since(startedAt),
	)
	return report, nil
}

// runFold executes one fold and converts any workflow error into a
// recorded failure.
func (o *Orchestrator) runFold(ctx context.Context, tracer trace.Tracer, a *folds.Assignment) *FoldRun {
	ctx, span := tracer.Start(ctx, "cv.fold")
	span.SetAttributes(attribute.Int("fold.number", a.FoldNumber))
	defer span.End()

	if o.foldTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.foldTimeout)
		defer cancel()
	}

	run := &FoldRun{
		FoldNumber: a.FoldNumber,
		TestCount:  a.TestCount,
		TrainCount: a.TrainCount,
		StartedAt:  time.Now().UTC(),
	}

	spec := FoldSpec{
		FoldNumber: a.FoldNumber,
		TrainPaths: corpus.FilePaths(a.TrainDocuments),
		TestPaths:  corpus.FilePaths(a.TestDocuments),
		Settings:   o.settings,
	}

	result, err := o.workflow.Execute(ctx, spec)
	run.Duration = time.Since(run.StartedAt)
	foldDuration.Observe(run.Duration.Seconds())

	if err != nil {
		run.Error = err.Error()
		foldRunsTotal.WithLabelValues("failed").Inc()
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("fold workflow failed",
			"fold", a.FoldNumber, "error", err, "duration", run.Duration)
		return run
	}

	run.Result = result
	foldRunsTotal.WithLabelValues("succeeded").Inc()
	o.logger.Info("fold workflow complete",
		"fold", a.FoldNumber,
		"tests_generated", result.TestsGenerated,
		"success_rate", result.SuccessRate,
		"duration", run.Duration,
	)
	return run
}
