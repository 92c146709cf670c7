package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadHost(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile("testdata/sadf.json")
	require.NoError(t, err)
	var doc struct {
		Sysstat struct {
			Hosts []map[string]any `json:"hosts"`
		} `json:"sysstat"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Sysstat.Hosts, 1)
	return doc.Sysstat.Hosts[0]
}

func TestNewReport(t *testing.T) {
	groups := []FieldGroup{
		NewCPULoad(CPULoadOptions{}),
		NewMemory(MemoryOptions{}),
		NewIO(),
		NewNetwork(NetworkOptions{Dev: true, Sock: true}),
		NewQueue(),
		NewPaging(),
	}
	report, err := NewReport(loadHost(t), groups)
	require.NoError(t, err)

	assert.Equal(t, Host{
		NodeName:     "node01",
		Machine:      "x86_64",
		Release:      "6.8.0-45-generic",
		NumberOfCPUs: 2,
		FileDate:     "2025-03-04",
		FileUTCTime:  "00:00:01",
		Restarts:     []any{},
	}, report.Host)
	assert.Equal(t, []time.Time{t1, t2}, report.Index)
	assert.Equal(t, []string{"cpu-load", "memory", "io", "network", "queue", "paging"}, report.Labels)

	cpu := report.Outputs["cpu-load"].(*KeyedTables)
	assert.Equal(t, []string{"all", "0", "1"}, cpu.Keys)
	assert.Equal(t, []string{"idle", "iowait", "nice", "steal", "system", "user"}, cpu.Columns)
	assert.Equal(t, []any{96.62, 94.78}, mustColumn(t, cpu.ByKey["all"], "idle"))

	memory := report.Outputs["memory"].(*FlatOutput)
	assert.Equal(t, 2, memory.Len())
	assert.Equal(t, "active", memory.Columns[0])

	io := report.Outputs["io"].(*FlatOutput)
	assert.Equal(t, []any{3.12, 5.44}, mustColumn(t, io.Table, "tps"))

	network := report.Outputs["network"].(*CompositeOutput)
	sock, ok := network.Child(LabelNetSock)
	require.True(t, ok)
	assert.Equal(t, []time.Time{t1}, sock.(*FlatOutput).Index)

	// paging was requested but sadf had no paging records
	assert.Equal(t, 0, report.Outputs["paging"].(*FlatOutput).Len())

	var paths [][]string
	for _, nt := range report.Tables() {
		paths = append(paths, nt.Path)
	}
	assert.Equal(t, [][]string{
		{"cpu-load", "all"}, {"cpu-load", "0"}, {"cpu-load", "1"},
		{"memory"},
		{"io"},
		{"network", "net-dev", "lo"}, {"network", "net-dev", "eth0"}, {"network", "net-sock"},
		{"queue"},
		{"paging"},
	}, paths)
}

func mustColumn(t *testing.T, table *Table, name string) []any {
	t.Helper()
	values, ok := table.Column(name)
	require.True(t, ok, name)
	return values
}

func TestNewReportMissingStatistics(t *testing.T) {
	g := NewQueue()
	_, err := NewReport(map[string]any{"nodename": "node01"}, []FieldGroup{g})
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Empty(t, structural.Category)
	// the group was not touched and can still be used
	_, err = g.Finalize(nil)
	assert.NoError(t, err)
}

func TestNewReportStatisticsNotAList(t *testing.T) {
	_, err := NewReport(map[string]any{"statistics": map[string]any{}}, nil)
	var structural *StructuralError
	assert.ErrorAs(t, err, &structural)
}

func TestNewReportEmptyStatistics(t *testing.T) {
	report, err := NewReport(map[string]any{"statistics": []any{}}, []FieldGroup{NewQueue()})
	require.NoError(t, err)
	assert.Empty(t, report.Index)
	assert.Equal(t, 0, report.Outputs["queue"].(*FlatOutput).Len())
}

func TestNewReportIndexMatchesTimestamps(t *testing.T) {
	host := map[string]any{"statistics": []any{
		map[string]any{"timestamp": stamp("2025-03-04", "00:30:01")},
		map[string]any{},
		map[string]any{"timestamp": stamp("2025-03-04", "00:10:01"), "queue": map[string]any{"runq-sz": 1.0}},
		map[string]any{"timestamp": stamp("2025-03-04", "00:20:01"), "queue": map[string]any{"runq-sz": 2.0}},
	}}
	report, err := NewReport(host, []FieldGroup{NewQueue()})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t1, t2, t3}, report.Index)
	queue := report.Outputs["queue"].(*FlatOutput)
	assert.Equal(t, []time.Time{t1, t2}, queue.Index)
	assert.Equal(t, [][]any{{1.0}, {2.0}, nil}, queue.Dense(report.Index))
}

func TestNewReportMissingFieldFails(t *testing.T) {
	host := map[string]any{"statistics": []any{
		map[string]any{"timestamp": stamp("2025-03-04", "00:10:01"), "queue": map[string]any{"runq-sz": 1.0, "blocked": 0.0}},
		map[string]any{"timestamp": stamp("2025-03-04", "00:20:01"), "queue": map[string]any{"runq-sz": 2.0}},
	}}
	report, err := NewReport(host, []FieldGroup{NewQueue()})
	assert.Nil(t, report)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "blocked", missing.Field)
}

func TestNewReportBadTimestampFails(t *testing.T) {
	host := map[string]any{"statistics": []any{
		map[string]any{"timestamp": stamp("2025-03-04", "00:10:01 PM"), "queue": map[string]any{"runq-sz": 1.0}},
	}}
	report, err := NewReport(host, []FieldGroup{NewQueue()})
	assert.Nil(t, report)
	var parseErr *TimestampParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNewReportDuplicateGroups(t *testing.T) {
	_, err := NewReport(map[string]any{"statistics": []any{}}, []FieldGroup{NewQueue(), NewQueue()})
	assert.ErrorContains(t, err, "more than once")
}
