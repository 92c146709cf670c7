package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sadf/internal/table"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const promNamespace = "sadf"

var promInvalidChars = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// promMetricName builds the metric name from the table path without its key and the field name,
// e.g., network/net-dev/eth0 rxkB becomes sadf_network_net_dev_rxkB.
func promMetricName(tableValues table.TableValues, fieldName string) string {
	var parts []string
	for _, p := range pathWithoutKey(tableValues) {
		parts = append(parts, promName(p))
	}
	parts = append(parts, promName(fieldName))
	return prometheus.BuildFQName(promNamespace, "", strings.Join(parts, "_"))
}

// createPromReport exposes the last row of every time-indexed table as gauges in
// the Prometheus text format. Per-key tables share a gauge with a key label.
func createPromReport(allTableValues []table.TableValues, meta Meta) (out []byte, err error) {
	registry := prometheus.NewRegistry()
	gauges := make(map[string]*prometheus.GaugeVec)
	for _, tableValues := range timeSeries(allTableValues) {
		timeIdx, _ := table.GetFieldIndex(table.TimeFieldName, tableValues)
		last := tableValues.NumRows() - 1
		for i, field := range tableValues.Fields {
			if i == timeIdx {
				continue
			}
			value, parseErr := strconv.ParseFloat(field.Values[last], 64)
			if parseErr != nil {
				continue
			}
			name := promMetricName(tableValues, field.Name)
			gauge, ok := gauges[name]
			if !ok {
				labelNames := []string{"host"}
				if tableValues.Key != "" {
					labelNames = append(labelNames, "key")
				}
				gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
					Name: name,
					Help: fmt.Sprintf("%s of %s at the last sample", field.Name, strings.Join(pathWithoutKey(tableValues), table.PathSeparator)),
				}, labelNames)
				if err = registry.Register(gauge); err != nil {
					err = fmt.Errorf("failed to register %s: %v", name, err)
					return
				}
				gauges[name] = gauge
			}
			labels := prometheus.Labels{"host": meta.HostName}
			if tableValues.Key != "" {
				labels["key"] = tableValues.Key
			}
			gauge.With(labels).Set(value)
		}
	}
	families, err := registry.Gather()
	if err != nil {
		err = fmt.Errorf("failed to gather metrics: %v", err)
		return
	}
	var buf bytes.Buffer
	for _, family := range families {
		if _, err = expfmt.MetricFamilyToText(&buf, family); err != nil {
			err = fmt.Errorf("failed to write metrics: %v", err)
			return
		}
	}
	out = buf.Bytes()
	return
}

func promName(s string) string {
	return strings.Trim(promInvalidChars.ReplaceAllString(s, "_"), "_")
}

func pathWithoutKey(tableValues table.TableValues) []string {
	if tableValues.Key != "" && len(tableValues.Path) > 0 {
		return tableValues.Path[:len(tableValues.Path)-1]
	}
	return tableValues.Path
}
