// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	foldRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cvkit_fold_runs_total",
		Help: "Fold workflow executions by terminal status.",
	}, []string{"status"})

	foldDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cvkit_fold_duration_seconds",
		Help:    "Wall-clock duration of fold workflow executions.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
