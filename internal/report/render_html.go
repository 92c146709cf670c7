package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"sadf/internal/table"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// createHtmlReport renders one line chart per time-indexed table, one series per numeric field.
func createHtmlReport(allTableValues []table.TableValues, meta Meta) (out []byte, err error) {
	page := components.NewPage()
	page.PageTitle = htmlTitle(meta)
	for _, tableValues := range timeSeries(allTableValues) {
		if line := createLineChart(tableValues); line != nil {
			page.AddCharts(line)
		}
	}
	var buf bytes.Buffer
	if err = page.Render(&buf); err != nil {
		err = fmt.Errorf("failed to render charts: %v", err)
		return
	}
	out = buf.Bytes()
	return
}

func htmlTitle(meta Meta) string {
	parts := []string{"sadf report"}
	if meta.HostName != "" {
		parts = append(parts, meta.HostName)
	}
	if meta.ReportID != "" {
		parts = append(parts, meta.ReportID)
	}
	return strings.Join(parts, " - ")
}

// createLineChart returns nil if the table has no numeric field.
func createLineChart(tableValues table.TableValues) *charts.Line {
	timeIdx, _ := table.GetFieldIndex(table.TimeFieldName, tableValues)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: tableValues.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)
	line.SetXAxis(tableValues.Fields[timeIdx].Values)
	numSeries := 0
	for i, field := range tableValues.Fields {
		if i == timeIdx {
			continue
		}
		data, numeric := lineData(field.Values)
		if !numeric {
			continue
		}
		line.AddSeries(field.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
		numSeries++
	}
	if numSeries == 0 {
		return nil
	}
	return line
}

// lineData converts values to chart points. Empty values become gaps. It reports
// false if any non-empty value is not a number.
func lineData(values []string) ([]opts.LineData, bool) {
	data := make([]opts.LineData, len(values))
	for i, value := range values {
		if value == "" {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false
		}
		data[i] = opts.LineData{Value: f}
	}
	return data, true
}
