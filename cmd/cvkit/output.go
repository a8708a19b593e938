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

	"github.com/mattn/go-isatty"
)

const (
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

// colorize wraps s in an ANSI color when stdout is a terminal.
func colorize(color, s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return color + s + ansiReset
}

func passFail(passed bool) string {
	if passed {
		return colorize(ansiGreen, "PASS")
	}
	return colorize(ansiRed, "FAIL")
}

func printHeader(title string) {
	fmt.Println()
	fmt.Println(title)
	fmt.Println("---------------------------------------------------")
}
