// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pharmaqa/cvkit/quality"
)

// Config is the cvkit.yaml file contents. Every command reads its
// inputs from here; flags only point at the file and tweak logging.
type Config struct {
	// Dataset controls fold construction.
	Dataset struct {
		CorpusDir   string `yaml:"corpus_dir" validate:"required"`
		Folds       int    `yaml:"folds" validate:"gte=2"`
		Bins        int    `yaml:"bins" validate:"gte=1"`
		DatasetPath string `yaml:"dataset_path" validate:"required"`
	} `yaml:"dataset"`

	// Validation holds the statistical thresholds.
	Validation struct {
		quality.Config `yaml:",inline"`
		ReportPath     string `yaml:"report_path" validate:"required"`
	} `yaml:"validation"`

	// Run controls workflow execution across folds.
	Run struct {
		Command     string            `yaml:"command"`
		Args        []string          `yaml:"args"`
		Settings    map[string]string `yaml:"settings"`
		Parallelism int               `yaml:"parallelism" validate:"gte=0"`
		RateLimit   float64           `yaml:"rate_limit" validate:"gte=0"`
		FoldTimeout Duration          `yaml:"fold_timeout"`
		MetricsAddr string            `yaml:"metrics_addr"`
		ReportPath  string            `yaml:"report_path" validate:"required"`
	} `yaml:"run"`

	// Logging configures the shared logger.
	Logging struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Dir   string `yaml:"dir"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "30m" or "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

var configValidate = validator.New(validator.WithRequiredStructEnabled())

// loadConfig reads, parses, defaults, and validates the config file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := configValidate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with every optional knob at its
// default, ready to be overlaid by the YAML file.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Dataset.Folds = 5
	cfg.Dataset.Bins = 3
	cfg.Dataset.DatasetPath = "cv_dataset.json"
	cfg.Validation.Config = quality.DefaultConfig()
	cfg.Validation.ReportPath = "cv_validation.json"
	cfg.Run.Parallelism = 1
	cfg.Run.ReportPath = "cv_run.json"
	cfg.Logging.Level = "info"
	return cfg
}
