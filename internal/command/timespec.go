package command

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
	"time"
)

// sadf takes start and end times in the local time zone with this layout
const sadfTimeLayout = "15:04:05"

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// ParseTime parses a user supplied start or end time. Times without a zone offset
// are UTC. A bare time of day ("15:04:05" or "15:04") is placed on now's UTC date.
func ParseTime(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			y, m, d := now.UTC().Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q, use HH:MM[:SS], YYYY-MM-DD HH:MM[:SS] or RFC 3339", value)
}

// sadfTime renders t as the local time of day sadf expects for -s and -e.
func sadfTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(sadfTimeLayout)
}
