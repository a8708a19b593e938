// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cv runs a workflow across every fold of a validated dataset
// and aggregates the per-fold outcomes into a cross-validation report.
//
// The workflow itself is pluggable: anything implementing Workflow can
// be driven, and CommandWorkflow adapts an external executable to the
// interface by exchanging JSON over stdin/stdout. The orchestrator
// keeps going when individual folds fail; a fold error becomes a
// failed FoldRun in the report, not an aborted run.
package cv
