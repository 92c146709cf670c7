package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"strconv"

	"sadf/internal/table"

	"github.com/parquet-go/parquet-go"
)

const parquetBatchSize = 1000

// parquetRow is one value of a time-indexed table. Numeric values go in Value,
// anything else in Text.
type parquetRow struct {
	Time  string   `parquet:"time"`
	Table string   `parquet:"table"`
	Key   string   `parquet:"key"`
	Field string   `parquet:"field"`
	Value *float64 `parquet:"value,optional"`
	Text  string   `parquet:"text"`
}

func createParquetReport(allTableValues []table.TableValues) (out []byte, err error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[parquetRow](&buf, parquet.Compression(&parquet.Snappy))
	batch := make([]parquetRow, 0, parquetBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := w.Write(batch); err != nil {
			return fmt.Errorf("failed to write parquet rows: %v", err)
		}
		batch = batch[:0]
		return nil
	}
	for _, tableValues := range timeSeries(allTableValues) {
		timeIdx, _ := table.GetFieldIndex(table.TimeFieldName, tableValues)
		for row := range tableValues.NumRows() {
			for i, field := range tableValues.Fields {
				value := field.Values[row]
				if i == timeIdx || value == "" {
					continue
				}
				pr := parquetRow{
					Time:  tableValues.Fields[timeIdx].Values[row],
					Table: tableValues.Name,
					Key:   tableValues.Key,
					Field: field.Name,
				}
				if f, err := strconv.ParseFloat(value, 64); err == nil {
					pr.Value = &f
				} else {
					pr.Text = value
				}
				batch = append(batch, pr)
				if len(batch) == parquetBatchSize {
					if err = flush(); err != nil {
						return
					}
				}
			}
		}
	}
	if err = flush(); err != nil {
		return
	}
	if err = w.Close(); err != nil {
		err = fmt.Errorf("failed to close parquet writer: %v", err)
		return
	}
	out = buf.Bytes()
	return
}
