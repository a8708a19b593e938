// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package corpus models the validation document corpus: one Document per
// user-requirements specification, with the GAMP risk category and the
// descriptive metadata the stratifier needs, plus the complexity scoring
// boundary.
//
// The package enforces the module's no-fallback discipline at the edge:
// a document with a missing metadata field, an unrecognized GAMP label,
// or no content fails to load. Nothing downstream ever has to guess what
// a document is.
package corpus
