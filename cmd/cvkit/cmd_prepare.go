// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharmaqa/cvkit/corpus"
	"github.com/pharmaqa/cvkit/folds"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the stratified fold dataset from the corpus",
	Long: `Loads every markdown document from the configured corpus directory,
scores its complexity, assigns it to a test fold by stratified
round-robin, and writes the self-contained dataset file.`,
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	docs, err := corpus.Load(cfg.Dataset.CorpusDir, corpus.NewHeuristicScorer(), logger.Logger)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	store, err := folds.NewBuilder(
		folds.WithFoldCount(cfg.Dataset.Folds),
		folds.WithBinCount(cfg.Dataset.Bins),
		folds.WithLogger(logger.Logger),
	).Build(docs)
	if err != nil {
		return fmt.Errorf("building folds: %w", err)
	}

	if err := store.Save(cfg.Dataset.DatasetPath); err != nil {
		return err
	}

	printHeader("Fold Dataset Prepared")
	fmt.Printf("   Documents:      %d\n", store.Metadata.TotalDocuments)
	fmt.Printf("   Requirements:   %d\n", store.Metadata.TotalRequirements)
	fmt.Printf("   Folds:          %d\n", store.Metadata.Folds)
	fmt.Printf("   Complexity:     %.2f - %.2f (mean %.2f)\n",
		store.Metadata.ComplexityRange.Min,
		store.Metadata.ComplexityRange.Max,
		store.Metadata.ComplexityRange.Mean)
	for _, a := range store.Assignments() {
		fmt.Printf("   Fold %d:         %d test / %d train\n",
			a.FoldNumber, a.TestCount, a.TrainCount)
	}
	fmt.Printf("   Written to:     %s\n", cfg.Dataset.DatasetPath)
	return nil
}
