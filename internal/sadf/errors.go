package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
)

// ErrGroupFinalized is returned when a field group is used after it produced its output.
// Field groups accumulate destructively and belong to a single report.
var ErrGroupFinalized = errors.New("field group already finalized")

// StructuralError reports sadf output that does not have the expected shape,
// e.g., a missing 'statistics' key or a category record of the wrong type.
type StructuralError struct {
	Category string // empty for errors in the top-level host object
	Reason   string
}

func (e *StructuralError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("malformed sadf output: %s", e.Reason)
	}
	return fmt.Sprintf("malformed sadf output for %s: %s", e.Category, e.Reason)
}

// TimestampParseError reports a statistics entry whose timestamp does not match
// the fixed date and time layout.
type TimestampParseError struct {
	Date string
	Time string
	Err  error
}

func (e *TimestampParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid timestamp %q %q", e.Date, e.Time)
	}
	return fmt.Sprintf("invalid timestamp %q %q: %v", e.Date, e.Time, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a record that lacks a field the category's column set requires.
type MissingFieldError struct {
	Category string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: record is missing field %q", e.Category, e.Field)
}
