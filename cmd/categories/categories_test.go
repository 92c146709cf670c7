package categories

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"testing"

	"sadf/internal/sadf"
	"sadf/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesTable(t *testing.T) {
	tableValues := categoriesTable()
	require.NoError(t, table.Validate([]table.TableValues{tableValues}))
	assert.Equal(t, sadf.Names(), tableValues.Fields[0].Values)

	options := map[string]string{}
	for i, name := range tableValues.Fields[0].Values {
		options[name] = tableValues.Fields[1].Values[i]
	}
	assert.Equal(t, "-u", options["cpu-load"])
	assert.Equal(t, "-n DEV,EDEV,NFS,NFSD,SOCK", options["network"])
	assert.Equal(t, "-b", options["io"])
}

func TestRunCmd(t *testing.T) {
	var out bytes.Buffer
	Cmd.SetOut(&out)
	t.Cleanup(func() { Cmd.SetOut(nil) })
	require.NoError(t, runCmd(Cmd, nil))
	assert.Contains(t, out.String(), "categories\n==========\n")
	assert.Contains(t, out.String(), "swap-pages")
}

func TestValidateFlags(t *testing.T) {
	flagFormat = "xlsx"
	t.Cleanup(func() { flagFormat = "txt" })
	assert.ErrorContains(t, validateFlags(Cmd, nil), "format options are")
}
