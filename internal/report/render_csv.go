package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"sadf/internal/table"
)

var csvHeader = []string{"time", "table", "key", "field", "value"}

// createCsvReport writes the time-indexed tables in long form, one line per value.
// Empty values are left out.
func createCsvReport(allTableValues []table.TableValues) (out []byte, err error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err = w.Write(csvHeader); err != nil {
		return
	}
	for _, tableValues := range timeSeries(allTableValues) {
		timeIdx, _ := table.GetFieldIndex(table.TimeFieldName, tableValues)
		for row := range tableValues.NumRows() {
			instant := tableValues.Fields[timeIdx].Values[row]
			for i, field := range tableValues.Fields {
				if i == timeIdx || field.Values[row] == "" {
					continue
				}
				if err = w.Write([]string{instant, tableValues.Name, tableValues.Key, field.Name, field.Values[row]}); err != nil {
					return
				}
			}
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		err = fmt.Errorf("failed to write csv report: %v", err)
		return
	}
	out = buf.Bytes()
	return
}
