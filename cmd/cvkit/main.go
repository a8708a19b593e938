// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pharmaqa/cvkit/logging"
)

var (
	cfgPath string
	quiet   bool

	cfg    *Config
	logger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "cvkit",
		Short: "Stratified cross-validation dataset tooling for requirement corpora",
		Long: `cvkit prepares stratified k-fold cross-validation datasets from a
corpus of requirement documents, validates their statistical quality,
and drives a workflow across every fold.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "cvkit.yaml", "path to the cvkit config file")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress log output on stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cfgPath)
		if err != nil {
			return err
		}
		logger = logging.New(logging.Config{
			Level:  parseLevel(cfg.Logging.Level),
			LogDir: cfg.Logging.Dir,
			JSON:   cfg.Logging.JSON,
			Quiet:  quiet,
		})
		slog.SetDefault(logger.Logger)
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
