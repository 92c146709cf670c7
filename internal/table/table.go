// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package table converts sadf reports into the string tables the renderers consume.
package table

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"sadf/internal/sadf"
)

const (
	// TimeFieldName is the name of the first field of every time-indexed table.
	TimeFieldName = "time"
	// HostTableName is the name of the host metadata table.
	HostTableName = "host"
	// PathSeparator joins the path elements of a table into its name, e.g., "network/net-dev/eth0".
	PathSeparator = "/"
)

// Field represents the values for a field in a table
type Field struct {
	Name   string
	Values []string
}

// TableValues is a named set of fields of equal length
type TableValues struct {
	Name        string
	Path        []string // path of the table in the report, e.g., ["cpu-load", "all"]
	Key         string   // sub-key of a per-CPU, per-interface or per-device table, e.g., "all"
	HasRows     bool     // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string   // message to display when no data is found
	Fields      []Field
}

// FromReport returns the host table followed by one table per report table, in
// report order. Every report table starts with the time field. A table keeps its
// own instants, so a sparse table has fewer rows than the report index.
func FromReport(report *sadf.Report) []TableValues {
	allTableValues := []TableValues{HostTable(report.Host)}
	for _, nt := range report.Tables() {
		tableValues := FromTable(nt)
		if err := validateTableValues(tableValues); err != nil {
			slog.Error("table validation failed", slog.String("table", tableValues.Name), slog.String("error", err.Error()))
			tableValues.Fields = []Field{}
		}
		allTableValues = append(allTableValues, tableValues)
	}
	return allTableValues
}

// FromTable converts one report table.
func FromTable(nt sadf.NamedTable) TableValues {
	tableValues := TableValues{
		Name:        strings.Join(nt.Path, PathSeparator),
		Path:        nt.Path,
		Key:         nt.Key,
		HasRows:     true,
		NoDataFound: "No statistics recorded.",
	}
	if nt.Table == nil {
		return tableValues
	}
	timeField := Field{Name: TimeFieldName, Values: make([]string, len(nt.Table.Index))}
	for i, instant := range nt.Table.Index {
		timeField.Values[i] = instant.Format(time.RFC3339)
	}
	tableValues.Fields = append(tableValues.Fields, timeField)
	for c, column := range nt.Table.Columns {
		field := Field{Name: column, Values: make([]string, len(nt.Table.Rows))}
		for r, row := range nt.Table.Rows {
			field.Values[r] = FormatValue(row[c])
		}
		tableValues.Fields = append(tableValues.Fields, field)
	}
	return tableValues
}

// HostTable returns the host metadata as a single-value table.
func HostTable(host sadf.Host) TableValues {
	return TableValues{
		Name: HostTableName,
		Path: []string{HostTableName},
		Fields: []Field{
			{Name: "Node Name", Values: []string{host.NodeName}},
			{Name: "Machine", Values: []string{host.Machine}},
			{Name: "Kernel Release", Values: []string{host.Release}},
			{Name: "CPUs", Values: []string{strconv.Itoa(host.NumberOfCPUs)}},
			{Name: "File Date", Values: []string{host.FileDate}},
			{Name: "File UTC Time", Values: []string{host.FileUTCTime}},
			{Name: "Restarts", Values: []string{strconv.Itoa(len(host.Restarts))}},
		},
	}
}

// FormatValue renders a decoded JSON value. A nil value renders as an empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// GetFieldIndex returns the index of a field with the given name in the TableValues structure.
func GetFieldIndex(fieldName string, tableValues TableValues) (int, error) {
	for i, field := range tableValues.Fields {
		if field.Name == fieldName {
			return i, nil
		}
	}
	return -1, fmt.Errorf("field [%s] not found in table [%s]", fieldName, tableValues.Name)
}

// NumRows returns the number of values in the table's fields.
func (tv TableValues) NumRows() int {
	if len(tv.Fields) == 0 {
		return 0
	}
	return len(tv.Fields[0].Values)
}

// Validate checks that the table is named and that all fields have the same number of values.
func Validate(allTableValues []TableValues) error {
	for _, tableValues := range allTableValues {
		if err := validateTableValues(tableValues); err != nil {
			return err
		}
	}
	return nil
}

func validateTableValues(tableValues TableValues) error {
	if tableValues.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	// no field values is a valid state
	if len(tableValues.Fields) == 0 {
		return nil
	}
	// field names cannot be empty
	for i, field := range tableValues.Fields {
		if field.Name == "" {
			return fmt.Errorf("table %s, field %d, name cannot be empty", tableValues.Name, i)
		}
	}
	// the number of entries in each field must be the same
	numEntries := len(tableValues.Fields[0].Values)
	for i, field := range tableValues.Fields {
		if len(field.Values) != numEntries {
			return fmt.Errorf("table %s, field %d, %s, number of entries must be the same for all fields, expected %d, got %d", tableValues.Name, i, field.Name, numEntries, len(field.Values))
		}
	}
	return nil
}
