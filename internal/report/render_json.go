package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"sadf/internal/table"

	"github.com/goccy/go-json"
)

// outRecord keeps the field order of the table
type outRecord []outValue

type outValue struct {
	Name  string
	Value string
}

func (r outRecord) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, v := range r {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	return append(buf, '}'), nil
}

type outTable struct {
	Name    string      `json:"name"`
	Key     string      `json:"key,omitempty"`
	Records []outRecord `json:"records"`
}

type outReport struct {
	ReportID string     `json:"report_id,omitempty"`
	Host     string     `json:"host,omitempty"`
	Tables   []outTable `json:"tables"`
}

func createJsonReport(allTableValues []table.TableValues, meta Meta) (out []byte, err error) {
	oReport := outReport{ReportID: meta.ReportID, Host: meta.HostName, Tables: []outTable{}}
	for _, tableValues := range allTableValues {
		oTable := outTable{Name: tableValues.Name, Key: tableValues.Key, Records: []outRecord{}}
		for recordIdx := range tableValues.NumRows() {
			oRecord := make(outRecord, 0, len(tableValues.Fields))
			for _, field := range tableValues.Fields {
				oRecord = append(oRecord, outValue{Name: field.Name, Value: field.Values[recordIdx]})
			}
			oTable.Records = append(oTable.Records, oRecord)
		}
		oReport.Tables = append(oReport.Tables, oTable)
	}
	return json.MarshalIndent(oReport, "", " ")
}
