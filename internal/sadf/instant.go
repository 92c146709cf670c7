package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// InstantLayout is the layout of a sadf timestamp once its date and time fields are joined.
// sadf must run with S_TIME_FORMAT=ISO and S_TIME_DEF_TIME=UTC to produce it.
const InstantLayout = "2006-01-02T15:04:05"

const timestampKey = "timestamp"

// ParseInstant converts a sadf date ("2006-01-02") and time of day ("15:04:05") into a UTC instant.
func ParseInstant(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(InstantLayout, date+"T"+clock, time.UTC)
	if err != nil {
		return time.Time{}, &TimestampParseError{Date: date, Time: clock, Err: err}
	}
	return t, nil
}

// NormalizeStatistics keys the entries of a sadf 'statistics' sequence by instant.
// Empty entries are skipped. Each value holds the entry's category records, i.e.,
// everything except the timestamp. The returned instants are unique and ascending.
// If two entries share an instant, the later one wins.
func NormalizeStatistics(statistics []any) (map[time.Time]map[string]any, []time.Time, error) {
	byInstant := make(map[time.Time]map[string]any, len(statistics))
	for i, entry := range statistics {
		if isEmpty(entry) {
			continue
		}
		record, ok := entry.(map[string]any)
		if !ok {
			return nil, nil, &TimestampParseError{Err: fmt.Errorf("statistics[%d] is a %T, not an object", i, entry)}
		}
		instant, err := recordInstant(record)
		if err != nil {
			return nil, nil, err
		}
		rest := make(map[string]any, len(record)-1)
		for k, v := range record {
			if k != timestampKey {
				rest[k] = v
			}
		}
		if _, dup := byInstant[instant]; dup {
			slog.Debug("duplicate instant in sadf statistics, keeping the later entry", slog.String("instant", instant.Format(time.RFC3339)), slog.Int("index", i))
		}
		byInstant[instant] = rest
	}
	instants := make([]time.Time, 0, len(byInstant))
	for instant := range byInstant {
		instants = append(instants, instant)
	}
	slices.SortFunc(instants, func(a, b time.Time) int { return a.Compare(b) })
	return byInstant, instants, nil
}

func recordInstant(record map[string]any) (time.Time, error) {
	ts, ok := record[timestampKey].(map[string]any)
	if !ok {
		return time.Time{}, &TimestampParseError{Err: fmt.Errorf("entry has no %q object", timestampKey)}
	}
	date, dateOK := ts["date"].(string)
	clock, clockOK := ts["time"].(string)
	if !dateOK || !clockOK {
		return time.Time{}, &TimestampParseError{Date: fmt.Sprint(ts["date"]), Time: fmt.Sprint(ts["time"]), Err: fmt.Errorf("date and time must be strings")}
	}
	return ParseInstant(date, clock)
}

// isEmpty reports whether a decoded JSON value is empty or false.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	}
	return false
}
