package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"time"
)

// Output is the finalized result of one field group: a *Table, *KeyedTables or *CompositeOutput.
type Output interface {
	// Label is the category label of the group that produced the output.
	Label() string
	// Tables lists every table in the output, depth first, in insertion order.
	Tables() []NamedTable
}

// Table is a rectangular, time-indexed table. Index holds the instant of each row,
// so a table that had no data at some instants has fewer rows than the report index.
type Table struct {
	Columns []string
	Index   []time.Time
	Rows    [][]any
}

// NamedTable is a table together with the path that identifies it within a report,
// e.g., ["network", "net-dev", "eth0"].
type NamedTable struct {
	Path  []string
	Key   string // sub-key of a keyed table, e.g., "eth0"; empty otherwise
	Table *Table
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of the named column, or false if there is no such column.
func (t *Table) Column(name string) ([]any, bool) {
	for i, c := range t.Columns {
		if c != name {
			continue
		}
		values := make([]any, len(t.Rows))
		for r, row := range t.Rows {
			values[r] = row[i]
		}
		return values, true
	}
	return nil, false
}

// Dense aligns the rows to index. Instants without a row get a nil row.
// Rows at instants that are not in index are dropped.
func (t *Table) Dense(index []time.Time) [][]any {
	dense := make([][]any, len(index))
	r := 0
	for i, instant := range index {
		for r < len(t.Index) && t.Index[r].Before(instant) {
			r++
		}
		if r < len(t.Index) && t.Index[r].Equal(instant) {
			dense[i] = t.Rows[r]
			r++
		}
	}
	return dense
}

// checkIndex verifies that the table's index is an ascending subset of the report index.
func (t *Table) checkIndex(index []time.Time) error {
	i := 0
	for r, instant := range t.Index {
		for i < len(index) && index[i].Before(instant) {
			i++
		}
		if i == len(index) || !index[i].Equal(instant) {
			return fmt.Errorf("row %d at %s is not in the report index", r, instant.Format(time.RFC3339))
		}
		i++
	}
	return nil
}

// FlatOutput is the output of a flat group.
type FlatOutput struct {
	label string
	*Table
}

func (o *FlatOutput) Label() string { return o.label }

func (o *FlatOutput) Tables() []NamedTable {
	return []NamedTable{{Path: []string{o.label}, Table: o.Table}}
}

// KeyedTables is the output of a keyed group, one table per sub-key (CPU core, interface, device).
type KeyedTables struct {
	label string
	// Keys lists the sub-keys in order of first appearance.
	Keys []string
	// Columns is shared by every sub-key table.
	Columns []string
	ByKey   map[string]*Table
}

func (o *KeyedTables) Label() string { return o.label }

func (o *KeyedTables) Tables() []NamedTable {
	tables := make([]NamedTable, 0, len(o.Keys))
	for _, key := range o.Keys {
		tables = append(tables, NamedTable{Path: []string{o.label, key}, Key: key, Table: o.ByKey[key]})
	}
	return tables
}

// CompositeOutput is the output of a composite group, one output per configured child.
type CompositeOutput struct {
	label    string
	Children []Output
}

func (o *CompositeOutput) Label() string { return o.label }

// Child returns the output of the child group with the given label.
func (o *CompositeOutput) Child(label string) (Output, bool) {
	for _, child := range o.Children {
		if child.Label() == label {
			return child, true
		}
	}
	return nil, false
}

func (o *CompositeOutput) Tables() []NamedTable {
	var tables []NamedTable
	for _, child := range o.Children {
		for _, nt := range child.Tables() {
			tables = append(tables, NamedTable{Path: append([]string{o.label}, nt.Path...), Key: nt.Key, Table: nt.Table})
		}
	}
	return tables
}
