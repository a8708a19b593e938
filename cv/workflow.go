// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// -----------------------------------------------------------------------------
// Workflow Contract
// -----------------------------------------------------------------------------

var (
	// ErrWorkflowFailed indicates the workflow ran but reported failure.
	ErrWorkflowFailed = errors.New("workflow failed")

	// ErrMalformedResult indicates workflow output that could not be
	// decoded into a WorkflowResult.
	ErrMalformedResult = errors.New("malformed workflow result")
)

// FoldSpec is the unit of work handed to a workflow: one fold's file
// lists plus free-form settings the workflow understands.
type FoldSpec struct {
	FoldNumber int               `json:"fold_number"`
	TrainPaths []string          `json:"train_paths"`
	TestPaths  []string          `json:"test_paths"`
	Settings   map[string]string `json:"settings,omitempty"`
}

// WorkflowResult is what a workflow reports back for one fold.
type WorkflowResult struct {
	// TestsGenerated counts the artifacts the workflow produced.
	TestsGenerated int `json:"tests_generated"`

	// SuccessRate is the workflow's own quality measure in [0, 1].
	SuccessRate float64 `json:"success_rate"`

	// Metrics carries any additional workflow-specific numbers.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Workflow is one fold's worth of work. Implementations must honor
// context cancellation; the orchestrator relies on it for timeouts.
type Workflow interface {
	Execute(ctx context.Context, spec FoldSpec) (*WorkflowResult, error)
}

// WorkflowFunc adapts a plain function to the Workflow interface.
type WorkflowFunc func(ctx context.Context, spec FoldSpec) (*WorkflowResult, error)

// Execute implements Workflow.
func (f WorkflowFunc) Execute(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
	return f(ctx, spec)
}

// -----------------------------------------------------------------------------
// Command Workflow
// -----------------------------------------------------------------------------

// CommandWorkflow runs an external executable once per fold. The
// FoldSpec is written to the process as JSON on stdin; the process
// must print a WorkflowResult as JSON on stdout and exit zero.
type CommandWorkflow struct {
	// Command is the executable path.
	Command string

	// Args are passed verbatim on every invocation.
	Args []string
}

// NewCommandWorkflow returns a CommandWorkflow for the given command.
func NewCommandWorkflow(command string, args ...string) *CommandWorkflow {
	return &CommandWorkflow{Command: command, Args: args}
}

// Execute implements Workflow by running the command to completion.
// Stderr is captured and included in the error on failure.
func (w *CommandWorkflow) Execute(ctx context.Context, spec FoldSpec) (*WorkflowResult, error) {
	input, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding fold spec: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.Command, w.Args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: fold %d: %v (stderr: %s)",
			ErrWorkflowFailed, spec.FoldNumber, err, stderr.String())
	}

	var result WorkflowResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("%w: fold %d: %v", ErrMalformedResult, spec.FoldNumber, err)
	}
	if result.SuccessRate < 0 || result.SuccessRate > 1 {
		return nil, fmt.Errorf("%w: fold %d: success_rate %v outside [0, 1]",
			ErrMalformedResult, spec.FoldNumber, result.SuccessRate)
	}
	return &result, nil
}
