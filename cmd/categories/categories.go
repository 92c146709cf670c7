// Package categories is a subcommand of the root command. It lists the statistics
// categories that can be reported.
package categories

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"sadf/internal/common"
	"sadf/internal/report"
	"sadf/internal/sadf"
	"sadf/internal/table"
)

const cmdName = "categories"

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "List the statistics categories",
	Example:       fmt.Sprintf("  $ %s %s\n  $ %s %s --format json", common.AppName, cmdName, common.AppName, cmdName),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagFormat string

var formatOptions = []string{report.FormatTxt, report.FormatJson}

func init() {
	Cmd.Flags().StringVar(&flagFormat, common.FlagFormatName, report.FormatTxt, fmt.Sprintf("choose output format from: %s", strings.Join(formatOptions, ", ")))
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if !slices.Contains(formatOptions, flagFormat) {
		return common.FlagValidationError(cmd, fmt.Sprintf("format options are: %s", strings.Join(formatOptions, ", ")))
	}
	return nil
}

// categoriesTable lists every category with the sar options it is requested with
func categoriesTable() table.TableValues {
	tableValues := table.TableValues{
		Name:    cmdName,
		Path:    []string{cmdName},
		HasRows: true,
		Fields: []table.Field{
			{Name: "name"},
			{Name: "sar options"},
			{Name: "description"},
		},
	}
	for _, c := range sadf.Categories() {
		group := c.New(sadf.Options{})
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, c.Name)
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, strings.Join(group.Request(), " "))
		tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, c.Help)
	}
	return tableValues
}

func runCmd(cmd *cobra.Command, args []string) error {
	out, err := report.Create(flagFormat, []table.TableValues{categoriesTable()}, report.Meta{})
	if err != nil {
		cmd.SilenceUsage = true
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
