package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// FieldGroup reshapes the records of one sadf category into tables.
//
// A group is created before a report is assembled, receives its category's record once
// per instant through Accumulate, and produces its output once through Finalize. Groups
// keep state between calls and must not be shared between reports.
type FieldGroup interface {
	// Label is the key of the category's record in a sadf statistics entry.
	Label() string
	// Request returns the sar options that make sadf report the category.
	Request() []string
	// Accumulate adds the category's record for one instant. Instants must be
	// passed in ascending order.
	Accumulate(at time.Time, record any) error
	// Finalize returns the accumulated tables. index is the full, ordered
	// instant sequence of the report.
	Finalize(index []time.Time) (Output, error)
}

// RemapFunc rewrites a category record before it is accumulated by a flat group.
type RemapFunc func(record map[string]any) (map[string]any, error)

type rowBuffer struct {
	index []time.Time
	rows  [][]any
}

func (b *rowBuffer) append(at time.Time, row []any) {
	b.index = append(b.index, at)
	b.rows = append(b.rows, row)
}

func (b *rowBuffer) table(columns []string, index []time.Time) (*Table, error) {
	t := &Table{Columns: columns, Index: b.index, Rows: b.rows}
	if err := t.checkIndex(index); err != nil {
		return nil, err
	}
	return t, nil
}

// columnSet returns the sorted field names of a record.
func columnSet(record map[string]any) []string {
	return slices.Sorted(maps.Keys(record))
}

// buildRow looks up every column of the column set in the record, in column order.
func buildRow(category string, columns []string, record map[string]any) ([]any, error) {
	row := make([]any, len(columns))
	for i, column := range columns {
		value, ok := record[column]
		if !ok {
			return nil, &MissingFieldError{Category: category, Field: column}
		}
		row[i] = value
	}
	return row, nil
}

func asObject(category string, record any) (map[string]any, error) {
	m, ok := record.(map[string]any)
	if !ok {
		return nil, &StructuralError{Category: category, Reason: fmt.Sprintf("expected an object, got %T", record)}
	}
	return m, nil
}

// FlatGroup accumulates a category whose record is a single object per instant,
// e.g., memory or paging.
type FlatGroup struct {
	label     string
	request   []string
	remap     RemapFunc
	columns   []string
	buf       rowBuffer
	finalized bool
}

// NewFlatGroup creates a flat group. remap may be nil.
func NewFlatGroup(label string, request []string, remap RemapFunc) *FlatGroup {
	return &FlatGroup{label: label, request: request, remap: remap}
}

func (g *FlatGroup) Label() string { return g.label }

func (g *FlatGroup) Request() []string { return slices.Clone(g.request) }

// Columns returns the column set, nil until the first record was accumulated.
func (g *FlatGroup) Columns() []string { return g.columns }

func (g *FlatGroup) Accumulate(at time.Time, record any) error {
	if g.finalized {
		return fmt.Errorf("%s: %w", g.label, ErrGroupFinalized)
	}
	m, err := asObject(g.label, record)
	if err != nil {
		return err
	}
	if g.remap != nil {
		if m, err = g.remap(m); err != nil {
			return err
		}
	}
	if g.columns == nil {
		g.columns = columnSet(m)
	}
	row, err := buildRow(g.label, g.columns, m)
	if err != nil {
		return err
	}
	g.buf.append(at, row)
	return nil
}

func (g *FlatGroup) Finalize(index []time.Time) (Output, error) {
	if g.finalized {
		return nil, fmt.Errorf("%s: %w", g.label, ErrGroupFinalized)
	}
	g.finalized = true
	t, err := g.buf.table(g.columns, index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.label, err)
	}
	return &FlatOutput{label: g.label, Table: t}, nil
}

// KeyedGroup accumulates a category whose record is a list of objects per instant,
// each identified by a key field, e.g., 'cpu' for CPU load or 'iface' for network devices.
// All sub-keys share the column set of the first object the group sees.
type KeyedGroup struct {
	label     string
	request   []string
	keyField  string
	columns   []string
	keys      []string
	bufs      map[string]*rowBuffer
	finalized bool
}

// NewKeyedGroup creates a keyed group that splits records on keyField.
func NewKeyedGroup(label string, request []string, keyField string) *KeyedGroup {
	return &KeyedGroup{label: label, request: request, keyField: keyField, bufs: make(map[string]*rowBuffer)}
}

func (g *KeyedGroup) Label() string { return g.label }

func (g *KeyedGroup) Request() []string { return slices.Clone(g.request) }

// KeyField returns the name of the field that identifies a sub-record.
func (g *KeyedGroup) KeyField() string { return g.keyField }

// Columns returns the shared column set, nil until the first record was accumulated.
func (g *KeyedGroup) Columns() []string { return g.columns }

func (g *KeyedGroup) Accumulate(at time.Time, record any) error {
	if g.finalized {
		return fmt.Errorf("%s: %w", g.label, ErrGroupFinalized)
	}
	items, ok := record.([]any)
	if !ok {
		return &StructuralError{Category: g.label, Reason: fmt.Sprintf("expected a list, got %T", record)}
	}
	for _, item := range items {
		sub, err := asObject(g.label, item)
		if err != nil {
			return err
		}
		rawKey, ok := sub[g.keyField]
		if !ok {
			return &MissingFieldError{Category: g.label, Field: g.keyField}
		}
		// the key field is not a column; work on a copy so the input stays intact
		sub = maps.Clone(sub)
		delete(sub, g.keyField)
		key := fmt.Sprint(rawKey)
		if g.columns == nil {
			g.columns = columnSet(sub)
		}
		row, err := buildRow(g.label, g.columns, sub)
		if err != nil {
			return err
		}
		buf, ok := g.bufs[key]
		if !ok {
			buf = &rowBuffer{}
			g.bufs[key] = buf
			g.keys = append(g.keys, key)
		}
		buf.append(at, row)
	}
	return nil
}

func (g *KeyedGroup) Finalize(index []time.Time) (Output, error) {
	if g.finalized {
		return nil, fmt.Errorf("%s: %w", g.label, ErrGroupFinalized)
	}
	g.finalized = true
	out := &KeyedTables{
		label:   g.label,
		Keys:    g.keys,
		Columns: g.columns,
		ByKey:   make(map[string]*Table, len(g.keys)),
	}
	for _, key := range g.keys {
		t, err := g.bufs[key].table(g.columns, index)
		if err != nil {
			return nil, fmt.Errorf("%s[%s]: %w", g.label, key, err)
		}
		out.ByKey[key] = t
	}
	return out, nil
}

// CompositeGroup accumulates a category whose record holds the records of
// independently selectable sub-categories, e.g., network.
type CompositeGroup struct {
	label     string
	request   []string
	children  []FieldGroup
	finalized bool
}

// NewCompositeGroup creates a composite group. The children's own requests are not
// used; request must select all of them.
func NewCompositeGroup(label string, request []string, children ...FieldGroup) *CompositeGroup {
	return &CompositeGroup{label: label, request: request, children: children}
}

func (g *CompositeGroup) Label() string { return g.label }

func (g *CompositeGroup) Request() []string { return slices.Clone(g.request) }

// Children returns the child groups in configured order.
func (g *CompositeGroup) Children() []FieldGroup { return g.children }

func (g *CompositeGroup) Accumulate(at time.Time, record any) error {
	if g.finalized {
		return fmt.Errorf("%s: %w", g.label, ErrGroupFinalized)
	}
	m, err := asObject(g.label, record)
	if err != nil {
		return err
	}
	for _, child := range g.children {
		sub, ok := m[child.Label()]
		if !ok {
			continue
		}
		if err := child.Accumulate(at, sub); err != nil {
			return err
		}
	}
	return nil
}

func (g *CompositeGroup) Finalize(index []time.Time) (Output, error) {
	if g.finalized {
		return nil, fmt.Errorf("%s: %w", g.label, ErrGroupFinalized)
	}
	g.finalized = true
	out := &CompositeOutput{label: g.label}
	for _, child := range g.children {
		childOut, err := child.Finalize(index)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, childOut)
	}
	return out, nil
}
