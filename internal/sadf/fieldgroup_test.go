package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2025, 3, 4, 0, 10, 1, 0, time.UTC)
	t2 = time.Date(2025, 3, 4, 0, 20, 1, 0, time.UTC)
	t3 = time.Date(2025, 3, 4, 0, 30, 1, 0, time.UTC)
)

func TestFlatGroupColumnsFromFirstRecord(t *testing.T) {
	g := NewFlatGroup("test", nil, nil)
	require.NoError(t, g.Accumulate(t1, map[string]any{"a": 1, "b": 2}))
	require.NoError(t, g.Accumulate(t2, map[string]any{"b": 4, "a": 3}))

	out, err := g.Finalize([]time.Time{t1, t2})
	require.NoError(t, err)
	flat, ok := out.(*FlatOutput)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, flat.Columns)
	assert.Equal(t, [][]any{{1, 2}, {3, 4}}, flat.Rows)
	assert.Equal(t, []time.Time{t1, t2}, flat.Index)
}

func TestFlatGroupKeepsFirstColumnSet(t *testing.T) {
	g := NewFlatGroup("test", nil, nil)
	require.NoError(t, g.Accumulate(t1, map[string]any{"z": 1, "a": 2}))
	// extra fields in later records do not change the column set
	require.NoError(t, g.Accumulate(t2, map[string]any{"b": 0, "a": 4, "z": 3}))
	assert.Equal(t, []string{"a", "z"}, g.Columns())

	out, err := g.Finalize([]time.Time{t1, t2})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{2, 1}, {4, 3}}, out.(*FlatOutput).Rows)
}

func TestFlatGroupMissingField(t *testing.T) {
	g := NewFlatGroup("memory", nil, nil)
	require.NoError(t, g.Accumulate(t1, map[string]any{"a": 1, "b": 2}))
	err := g.Accumulate(t2, map[string]any{"a": 3})

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "memory", missing.Category)
	assert.Equal(t, "b", missing.Field)
}

func TestFlatGroupWrongShape(t *testing.T) {
	g := NewFlatGroup("memory", nil, nil)
	err := g.Accumulate(t1, []any{map[string]any{"a": 1}})
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, "memory", structural.Category)
}

func TestKeyedGroupSparse(t *testing.T) {
	g := NewCPULoad(CPULoadOptions{})
	require.NoError(t, g.Accumulate(t1, []any{
		map[string]any{"cpu": 0, "x": 1},
		map[string]any{"cpu": 1, "x": 2},
	}))
	require.NoError(t, g.Accumulate(t2, []any{
		map[string]any{"cpu": 0, "x": 3},
	}))

	out, err := g.Finalize([]time.Time{t1, t2})
	require.NoError(t, err)
	keyed, ok := out.(*KeyedTables)
	require.True(t, ok)
	assert.Equal(t, []string{"0", "1"}, keyed.Keys)
	assert.Equal(t, []string{"x"}, keyed.Columns)
	assert.Equal(t, [][]any{{1}, {3}}, keyed.ByKey["0"].Rows)
	assert.Equal(t, []time.Time{t1, t2}, keyed.ByKey["0"].Index)
	assert.Equal(t, [][]any{{2}}, keyed.ByKey["1"].Rows)
	assert.Equal(t, []time.Time{t1}, keyed.ByKey["1"].Index)
}

func TestKeyedGroupSharedColumnSet(t *testing.T) {
	g := NewKeyedGroup("net-dev", nil, "iface")
	require.NoError(t, g.Accumulate(t1, []any{
		map[string]any{"iface": "lo", "txkB": 1, "rxkB": 2},
	}))
	// a new key with a different field order uses the group's column set
	require.NoError(t, g.Accumulate(t2, []any{
		map[string]any{"rxkB": 4, "iface": "eth0", "txkB": 3, "extra": 9},
	}))
	out, err := g.Finalize([]time.Time{t1, t2})
	require.NoError(t, err)
	keyed := out.(*KeyedTables)
	assert.Equal(t, []string{"rxkB", "txkB"}, keyed.Columns)
	assert.Equal(t, [][]any{{4, 3}}, keyed.ByKey["eth0"].Rows)
}

func TestKeyedGroupDoesNotMutateInput(t *testing.T) {
	record := map[string]any{"cpu": "all", "idle": 99.0}
	g := NewCPULoad(CPULoadOptions{})
	require.NoError(t, g.Accumulate(t1, []any{record}))
	assert.Equal(t, "all", record["cpu"])
}

func TestKeyedGroupMissingKeyField(t *testing.T) {
	g := NewCPULoad(CPULoadOptions{})
	err := g.Accumulate(t1, []any{map[string]any{"idle": 99.0}})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "cpu", missing.Field)
}

func TestKeyedGroupNotAList(t *testing.T) {
	g := NewCPULoad(CPULoadOptions{})
	err := g.Accumulate(t1, map[string]any{"cpu": "all"})
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestCompositeGroupSkipsAbsentChildren(t *testing.T) {
	g := NewNetwork(NetworkOptions{})
	require.NoError(t, g.Accumulate(t1, map[string]any{
		"net-dev": []any{map[string]any{"iface": "eth0", "rxkB": 1.5}},
	}))
	require.NoError(t, g.Accumulate(t2, map[string]any{
		"net-dev":  []any{map[string]any{"iface": "eth0", "rxkB": 2.5}},
		"net-sock": map[string]any{"totsck": 10, "tcpsck": 4},
	}))

	out, err := g.Finalize([]time.Time{t1, t2})
	require.NoError(t, err)
	composite, ok := out.(*CompositeOutput)
	require.True(t, ok)
	require.Len(t, composite.Children, 5)

	dev, ok := composite.Child(LabelNetDev)
	require.True(t, ok)
	assert.Equal(t, [][]any{{1.5}, {2.5}}, dev.(*KeyedTables).ByKey["eth0"].Rows)

	edev, ok := composite.Child(LabelNetEDev)
	require.True(t, ok)
	assert.Empty(t, edev.(*KeyedTables).Keys)

	nfs, ok := composite.Child(LabelNetNFS)
	require.True(t, ok)
	assert.Equal(t, 0, nfs.(*FlatOutput).Len())

	sock, ok := composite.Child(LabelNetSock)
	require.True(t, ok)
	assert.Equal(t, []time.Time{t2}, sock.(*FlatOutput).Index)
	assert.Equal(t, [][]any{{4, 10}}, sock.(*FlatOutput).Rows)

	paths := [][]string{}
	keys := []string{}
	for _, nt := range composite.Tables() {
		paths = append(paths, nt.Path)
		keys = append(keys, nt.Key)
	}
	assert.Equal(t, []string{"eth0", "", "", ""}, keys)
	assert.Equal(t, [][]string{
		{"network", "net-dev", "eth0"},
		{"network", "net-nfs"},
		{"network", "net-nfsd"},
		{"network", "net-sock"},
	}, paths)
}

func TestGroupCannotBeReused(t *testing.T) {
	groups := []FieldGroup{
		NewFlatGroup("flat", nil, nil),
		NewKeyedGroup("keyed", nil, "k"),
		NewNetwork(NetworkOptions{Dev: true}),
	}
	for _, g := range groups {
		t.Run(g.Label(), func(t *testing.T) {
			_, err := g.Finalize(nil)
			require.NoError(t, err)
			_, err = g.Finalize(nil)
			assert.True(t, errors.Is(err, ErrGroupFinalized))
			err = g.Accumulate(t1, map[string]any{})
			assert.True(t, errors.Is(err, ErrGroupFinalized))
		})
	}
}

func TestIdenticalInputIdenticalOutput(t *testing.T) {
	records := []any{
		map[string]any{"cpu": "all", "user": 1.0, "idle": 99.0},
		map[string]any{"cpu": "0", "user": 2.0, "idle": 98.0},
	}
	var outputs []Output
	for range 2 {
		g := NewCPULoad(CPULoadOptions{})
		require.NoError(t, g.Accumulate(t1, records))
		require.NoError(t, g.Accumulate(t2, records))
		out, err := g.Finalize([]time.Time{t1, t2})
		require.NoError(t, err)
		outputs = append(outputs, out)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestTableDense(t *testing.T) {
	table := &Table{
		Columns: []string{"x"},
		Index:   []time.Time{t1, t3},
		Rows:    [][]any{{1}, {3}},
	}
	assert.Equal(t, [][]any{{1}, nil, {3}}, table.Dense([]time.Time{t1, t2, t3}))
	assert.Equal(t, [][]any{nil, {3}}, table.Dense([]time.Time{t2, t3}))

	values, ok := table.Column("x")
	require.True(t, ok)
	assert.Equal(t, []any{1, 3}, values)
	_, ok = table.Column("y")
	assert.False(t, ok)
}

func TestFinalizeRejectsRowsOutsideIndex(t *testing.T) {
	g := NewFlatGroup("test", nil, nil)
	require.NoError(t, g.Accumulate(t2, map[string]any{"a": 1}))
	_, err := g.Finalize([]time.Time{t1, t3})
	assert.Error(t, err)
}
