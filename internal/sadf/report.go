// Package sadf reshapes the JSON output of sysstat's sadf command into time-indexed tables.
//
// The output of 'sadf -j' holds, per host, a list of statistics entries. Each entry
// has a timestamp and one record per requested category, keyed by the category label.
// A Report walks the entries in time order and hands every category record to the
// FieldGroup registered for that label. Each group turns its records into one table
// (flat categories), one table per key (per CPU, interface or device), or a set of
// child outputs (network).
package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

const statisticsKey = "statistics"

// Host is the metadata sadf reports about the host the data file was recorded on.
type Host struct {
	NodeName     string
	Machine      string
	Release      string
	NumberOfCPUs int
	FileDate     string
	FileUTCTime  string
	Restarts     []any
}

// Report is the reshaped content of one sadf host object.
type Report struct {
	Host Host
	// Index is every instant with data, ascending.
	Index []time.Time
	// Labels lists the group labels in the order the groups were given.
	Labels  []string
	Outputs map[string]Output
}

// NewReport assembles a report from a decoded sadf host object, i.e., an element of
// sysstat.hosts. The groups are consumed: each accumulates the records of its category
// and is finalized. On error no report is returned.
func NewReport(host map[string]any, groups []FieldGroup) (*Report, error) {
	rawStats, ok := host[statisticsKey]
	if !ok {
		return nil, &StructuralError{Reason: fmt.Sprintf("'%s' missing from sadf output", statisticsKey)}
	}
	var statistics []any
	if rawStats != nil {
		statistics, ok = rawStats.([]any)
		if !ok {
			return nil, &StructuralError{Reason: fmt.Sprintf("'%s' is a %T, not a list", statisticsKey, rawStats)}
		}
	}
	labels := make([]string, 0, len(groups))
	seen := mapset.NewSet[string]()
	for _, g := range groups {
		if !seen.Add(g.Label()) {
			return nil, fmt.Errorf("field group %s given more than once", g.Label())
		}
		labels = append(labels, g.Label())
	}
	byInstant, index, err := NormalizeStatistics(statistics)
	if err != nil {
		return nil, err
	}
	outputs, err := assemble(byInstant, index, groups)
	if err != nil {
		return nil, err
	}
	slog.Debug("sadf report assembled", slog.Int("instants", len(index)), slog.Int("groups", len(groups)))
	return &Report{
		Host:    hostMetadata(host),
		Index:   index,
		Labels:  labels,
		Outputs: outputs,
	}, nil
}

// assemble dispatches the records of each instant, in order, to the groups whose
// label is present, then finalizes every group.
func assemble(byInstant map[time.Time]map[string]any, index []time.Time, groups []FieldGroup) (map[string]Output, error) {
	unhandled := mapset.NewSet[string]()
	for _, instant := range index {
		records := byInstant[instant]
		consumed := 0
		for _, g := range groups {
			record, ok := records[g.Label()]
			if !ok {
				continue
			}
			consumed++
			if err := g.Accumulate(instant, record); err != nil {
				return nil, err
			}
		}
		if consumed < len(records) {
			for label := range records {
				unhandled.Add(label)
			}
		}
	}
	for _, g := range groups {
		unhandled.Remove(g.Label())
	}
	if unhandled.Cardinality() > 0 {
		names := unhandled.ToSlice()
		slices.Sort(names)
		slog.Debug("sadf records without a field group", slog.Any("labels", names))
	}
	outputs := make(map[string]Output, len(groups))
	for _, g := range groups {
		out, err := g.Finalize(index)
		if err != nil {
			return nil, err
		}
		outputs[g.Label()] = out
	}
	return outputs, nil
}

func hostMetadata(host map[string]any) Host {
	h := Host{
		NodeName:    stringField(host, "nodename"),
		Machine:     stringField(host, "machine"),
		Release:     stringField(host, "release"),
		FileDate:    stringField(host, "file-date"),
		FileUTCTime: stringField(host, "file-utc-time"),
	}
	if n, ok := host["number-of-cpus"].(float64); ok {
		h.NumberOfCPUs = int(n)
	}
	if restarts, ok := host["restarts"].([]any); ok {
		h.Restarts = restarts
	}
	return h
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Tables lists every table of the report, in group order.
func (r *Report) Tables() []NamedTable {
	var tables []NamedTable
	for _, label := range r.Labels {
		tables = append(tables, r.Outputs[label].Tables()...)
	}
	return tables
}
