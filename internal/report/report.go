// Package report renders sadf tables in various formats such as txt, json, xlsx, csv, parquet, html and prom.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sadf/internal/table"
)

const (
	FormatTxt     = "txt"
	FormatJson    = "json"
	FormatXlsx    = "xlsx"
	FormatCsv     = "csv"
	FormatParquet = "parquet"
	FormatHtml    = "html"
	FormatProm    = "prom"
	FormatAll     = "all"
)

const noDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatXlsx, FormatCsv, FormatParquet, FormatHtml, FormatProm}

// Meta identifies the report in formats that carry a title or labels.
type Meta struct {
	ReportID string
	HostName string
}

// Create generates a report in the specified format from the provided tables.
// All fields of a table must have the same number of values.
//
// Parameters:
// - format: The desired format of the report, one of FormatOptions.
// - allTableValues: The values for each field in each table.
// - meta: The report identity.
//
// Returns:
// - out: The generated report as a byte slice.
// - err: An error, if any occurred during report generation.
func Create(format string, allTableValues []table.TableValues, meta Meta) (out []byte, err error) {
	if err = table.Validate(allTableValues); err != nil {
		return nil, err
	}
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues, meta)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	case FormatCsv:
		return createCsvReport(allTableValues)
	case FormatParquet:
		return createParquetReport(allTableValues)
	case FormatHtml:
		return createHtmlReport(allTableValues, meta)
	case FormatProm:
		return createPromReport(allTableValues, meta)
	}
	return nil, fmt.Errorf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format)
}

// timeSeries returns the time-indexed tables that have at least one row.
func timeSeries(allTableValues []table.TableValues) []table.TableValues {
	var series []table.TableValues
	for _, tableValues := range allTableValues {
		if !tableValues.HasRows || tableValues.NumRows() == 0 {
			continue
		}
		if _, err := table.GetFieldIndex(table.TimeFieldName, tableValues); err != nil {
			continue
		}
		series = append(series, tableValues)
	}
	return series
}
