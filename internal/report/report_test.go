package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"sadf/internal/table"

	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testMeta = Meta{ReportID: "4f1c2a9e-6a53-4d0e-9a55-0c1f4d0e7b21", HostName: "node01"}

func testTables() []table.TableValues {
	instants := []string{"2025-03-04T00:10:01Z", "2025-03-04T00:20:01Z"}
	return []table.TableValues{
		{
			Name:   "host",
			Path:   []string{"host"},
			Fields: []table.Field{{Name: "Node Name", Values: []string{"node01"}}},
		},
		{
			Name:    "memory",
			Path:    []string{"memory"},
			HasRows: true,
			Fields: []table.Field{
				{Name: "time", Values: instants},
				{Name: "memused", Values: []string{"2210032", "2321176"}},
				{Name: "memused-percent", Values: []string{"27.32", "28.7"}},
			},
		},
		{
			Name:    "network/net-dev/eth0",
			Path:    []string{"network", "net-dev", "eth0"},
			Key:     "eth0",
			HasRows: true,
			Fields: []table.Field{
				{Name: "time", Values: instants},
				{Name: "rxkB", Values: []string{"1.91", "5.01"}},
			},
		},
		{
			Name:    "network/net-dev/lo",
			Path:    []string{"network", "net-dev", "lo"},
			Key:     "lo",
			HasRows: true,
			Fields: []table.Field{
				{Name: "time", Values: instants},
				{Name: "rxkB", Values: []string{"0.08", ""}},
			},
		},
		{
			Name:        "network/net-nfs",
			Path:        []string{"network", "net-nfs"},
			HasRows:     true,
			NoDataFound: "No statistics recorded.",
			Fields:      []table.Field{{Name: "time", Values: []string{}}},
		},
	}
}

func TestCreateErrors(t *testing.T) {
	_, err := Create("yaml", testTables(), testMeta)
	assert.ErrorContains(t, err, "expected one of")

	bad := []table.TableValues{{Name: "bad", Fields: []table.Field{{Name: "a", Values: []string{"1"}}, {Name: "b"}}}}
	for _, format := range FormatOptions {
		_, err := Create(format, bad, testMeta)
		assert.Error(t, err, format)
	}
}

func TestCreateAllFormats(t *testing.T) {
	for _, format := range FormatOptions {
		t.Run(format, func(t *testing.T) {
			out, err := Create(format, testTables(), testMeta)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestTextReport(t *testing.T) {
	out, err := Create(FormatTxt, testTables(), testMeta)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "host\n====\nNode Name: node01\n")
	assert.Contains(t, text, "memory\n======\n")
	assert.Contains(t, text, "2025-03-04T00:10:01Z   2210032")
	assert.Contains(t, text, "network/net-nfs\n===============\nNo statistics recorded.\n\n")
}

func TestJsonReport(t *testing.T) {
	out, err := Create(FormatJson, testTables(), testMeta)
	require.NoError(t, err)
	var decoded struct {
		ReportID string `json:"report_id"`
		Host     string `json:"host"`
		Tables   []struct {
			Name    string              `json:"name"`
			Key     string              `json:"key"`
			Records []map[string]string `json:"records"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, testMeta.ReportID, decoded.ReportID)
	assert.Equal(t, "node01", decoded.Host)
	require.Len(t, decoded.Tables, 5)
	assert.Equal(t, "memory", decoded.Tables[1].Name)
	assert.Equal(t, "2210032", decoded.Tables[1].Records[0]["memused"])
	assert.Equal(t, "eth0", decoded.Tables[2].Key)
	assert.Empty(t, decoded.Tables[4].Records)
	// records keep the field order
	text := string(out)
	assert.Less(t, strings.Index(text, `"time"`), strings.Index(text, `"memused"`))
}

func TestCsvReport(t *testing.T) {
	out, err := Create(FormatCsv, testTables(), testMeta)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2025-03-04T00:10:01Z", "memory", "", "memused", "2210032"}, records[1])
	assert.Contains(t, records, []string{"2025-03-04T00:20:01Z", "network/net-dev/eth0", "eth0", "rxkB", "5.01"})
	for _, record := range records {
		assert.NotEqual(t, "host", record[1])
	}
}

func TestParquetReport(t *testing.T) {
	out, err := Create(FormatParquet, testTables(), testMeta)
	require.NoError(t, err)
	rows, err := parquet.Read[parquetRow](bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "memory", rows[0].Table)
	assert.Equal(t, "memused", rows[0].Field)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 2210032.0, *rows[0].Value)
	assert.Equal(t, "eth0", rows[4].Key)
}

func TestXlsxReport(t *testing.T) {
	tables := testTables()
	tables = append(tables, table.Summary(tables))
	out, err := Create(FormatXlsx, tables, testMeta)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{XlsxPrimarySheetName, XlsxSummarySheetName}, f.GetSheetList())
	value, err := f.GetCellValue(XlsxPrimarySheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "host", value)
	value, err = f.GetCellValue(XlsxSummarySheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, table.SummaryTableName, value)
}

func TestHtmlReport(t *testing.T) {
	out, err := Create(FormatHtml, testTables(), testMeta)
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "sadf report - node01")
	assert.Contains(t, html, "network/net-dev/eth0")
	assert.NotContains(t, html, "network/net-nfs")
}

func TestPromReport(t *testing.T) {
	out, err := Create(FormatProm, testTables(), testMeta)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "# TYPE sadf_memory_memused gauge\n")
	assert.Contains(t, text, `sadf_memory_memused{host="node01"} 2.321176e+06`)
	assert.Contains(t, text, `sadf_memory_memused_percent{host="node01"} 28.7`)
	assert.Contains(t, text, `sadf_network_net_dev_rxkB{host="node01",key="eth0"} 5.01`)
	// the last sample of lo is empty
	assert.NotContains(t, text, `key="lo"`)
	assert.NotContains(t, text, "Node Name")
}

func TestPromMetricName(t *testing.T) {
	tables := testTables()
	assert.Equal(t, "sadf_network_net_dev_rxkB", promMetricName(tables[2], "rxkB"))
	assert.Equal(t, "sadf_memory_memused_percent", promMetricName(tables[1], "memused-percent"))
	// the table path is left intact
	assert.Equal(t, []string{"network", "net-dev", "eth0"}, tables[2].Path)
}

func TestReadRawInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.raw"), []byte(`{"sysstat": {}}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.raw"), []byte(`{"sysstat": {"hosts": []}}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not sadf"), 0600))

	inputs, err := ReadRawInputs(dir)
	require.NoError(t, err)
	var paths []string
	for _, input := range inputs {
		paths = append(paths, filepath.Base(input.Path))
	}
	assert.Equal(t, []string{"a.raw", "b.raw"}, paths)

	inputs, err = ReadRawInputs(filepath.Join(dir, "b.raw"))
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, `{"sysstat": {}}`, string(inputs[0].Output))

	_, err = ReadRawInputs(filepath.Join(dir, "notes.txt"))
	assert.ErrorContains(t, err, "not valid JSON")

	_, err = ReadRawInputs(t.TempDir())
	assert.ErrorContains(t, err, "no .raw files")

	_, err = ReadRawInputs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
	assert.False(t, slices.Contains(paths, "notes.txt"))
}
