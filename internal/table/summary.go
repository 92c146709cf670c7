package table

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SummaryTableName is the name of the table Summary returns.
const SummaryTableName = "summary"

// Summary returns one row per numeric field of every time-indexed table, with the
// field's mean, minimum and maximum over the table's rows. Empty values are skipped.
// Fields without numeric values are left out.
func Summary(allTableValues []TableValues) TableValues {
	summary := TableValues{
		Name:        SummaryTableName,
		Path:        []string{SummaryTableName},
		HasRows:     true,
		NoDataFound: "No numeric statistics recorded.",
		Fields: []Field{
			{Name: "table"},
			{Name: "field"},
			{Name: "mean"},
			{Name: "min"},
			{Name: "max"},
		},
	}
	p := message.NewPrinter(language.English) // use printer to get commas at thousands, e.g., memused 2,265,604.00
	for _, tableValues := range allTableValues {
		if !tableValues.HasRows {
			continue
		}
		for _, field := range tableValues.Fields {
			if field.Name == TimeFieldName {
				continue
			}
			sum, lo, hi, count := 0.0, math.Inf(1), math.Inf(-1), 0
			for _, value := range field.Values {
				v, err := strconv.ParseFloat(value, 64)
				if err != nil {
					continue
				}
				sum += v
				lo = min(lo, v)
				hi = max(hi, v)
				count++
			}
			if count == 0 {
				continue
			}
			summary.Fields[0].Values = append(summary.Fields[0].Values, tableValues.Name)
			summary.Fields[1].Values = append(summary.Fields[1].Values, field.Name)
			summary.Fields[2].Values = append(summary.Fields[2].Values, p.Sprintf("%0.2f", sum/float64(count)))
			summary.Fields[3].Values = append(summary.Fields[3].Values, p.Sprintf("%0.2f", lo))
			summary.Fields[4].Values = append(summary.Fields[4].Values, p.Sprintf("%0.2f", hi))
		}
	}
	return summary
}
