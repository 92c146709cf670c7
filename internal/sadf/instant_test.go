package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stamp(date, clock string) map[string]any {
	return map[string]any{"date": date, "time": clock, "utc": 1.0, "interval": 600.0}
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		clock     string
		want      time.Time
		expectErr bool
	}{
		{name: "valid", date: "2025-03-04", clock: "00:10:01", want: t1},
		{name: "end of day", date: "2025-03-04", clock: "23:59:59", want: time.Date(2025, 3, 4, 23, 59, 59, 0, time.UTC)},
		{name: "localized date", date: "03/04/25", clock: "00:10:01", expectErr: true},
		{name: "12 hour clock", date: "2025-03-04", clock: "12:10:01 AM", expectErr: true},
		{name: "empty", expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.date, tt.clock)
			if tt.expectErr {
				var parseErr *TimestampParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, tt.date, parseErr.Date)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeStatistics(t *testing.T) {
	statistics := []any{
		map[string]any{"timestamp": stamp("2025-03-04", "00:20:01"), "memory": map[string]any{"a": 2.0}},
		map[string]any{},
		nil,
		map[string]any{"timestamp": stamp("2025-03-04", "00:10:01"), "memory": map[string]any{"a": 1.0}},
		map[string]any{"timestamp": stamp("2025-03-04", "00:30:01")},
	}
	byInstant, index, err := NormalizeStatistics(statistics)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t1, t2, t3}, index)
	assert.Equal(t, map[string]any{"memory": map[string]any{"a": 1.0}}, byInstant[t1])
	assert.Empty(t, byInstant[t3])
	// the input keeps its timestamps
	assert.Contains(t, statistics[0].(map[string]any), "timestamp")
}

func TestNormalizeStatisticsDuplicateInstant(t *testing.T) {
	statistics := []any{
		map[string]any{"timestamp": stamp("2025-03-04", "00:10:01"), "queue": map[string]any{"runq-sz": 1.0}},
		map[string]any{"timestamp": stamp("2025-03-04", "00:10:01"), "queue": map[string]any{"runq-sz": 2.0}},
	}
	byInstant, index, err := NormalizeStatistics(statistics)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t1}, index)
	assert.Equal(t, 2.0, byInstant[t1]["queue"].(map[string]any)["runq-sz"])
}

func TestNormalizeStatisticsErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry any
	}{
		{name: "bad time", entry: map[string]any{"timestamp": stamp("2025-03-04", "25:00:00")}},
		{name: "no timestamp", entry: map[string]any{"memory": map[string]any{}}},
		{name: "numeric date", entry: map[string]any{"timestamp": map[string]any{"date": 20250304.0, "time": "00:10:01"}}},
		{name: "not an object", entry: "2025-03-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NormalizeStatistics([]any{tt.entry})
			var parseErr *TimestampParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}
