// Package common defines data structures and functions that are used by multiple
// application commands, e.g., report, categories.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"sadf/internal/command"
	"sadf/internal/config"
	"sadf/internal/progress"
	"sadf/internal/report"
	"sadf/internal/sadf"
	"sadf/internal/table"
	"sadf/internal/util"

	"github.com/spf13/cobra"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	OutputDir string // OutputDir is the directory where the application will write output files.
	Version   string // Version is the version of the application.
	ReportID  string // ReportID identifies the reports of one run.
	Debug     bool   // Debug is set when the application runs with --debug.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// TableNameRun is the table that records how the report was produced.
const TableNameRun = "run"

// localLabel labels the progress of a sadf run on this host
const localLabel = "localhost"

var (
	FlagInput  string
	FlagFormat []string
)

const (
	FlagInputName  = "input"
	FlagFormatName = "format"
)

// ReportingCommand holds what the report flow needs from a command. The command
// fills it in from its flags and the run configuration and then calls Run.
type ReportingCommand struct {
	Cmd            *cobra.Command
	ReportNamePost string
	Command        *command.Command                  // sadf invocation, used unless FlagInput is set
	NewGroups      func() ([]sadf.FieldGroup, error) // field groups for each report, groups are consumed by a report
	Derived        []config.Derived
	NoSummary      bool
	SaveRaw        bool // save the sadf output as <name>.raw next to the reports
}

// sadfOutput is the JSON output of one sadf run, collected or read from a file
type sadfOutput struct {
	label  string // progress label
	name   string // base name of the report files, set from the host name when empty
	output []byte
	saved  bool // read from a raw file
}

// Run is the common flow/logic for the reporting commands.
func (rc *ReportingCommand) Run() error {
	// appContext is the application context that holds common data and resources.
	appContext := rc.Cmd.Parent().Context().Value(AppContext{}).(AppContext)
	// handle signals, the sadf child process is killed when the context is cancelled
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var outputs []sadfOutput
	var err error
	if FlagInput != "" {
		outputs, err = outputsFromInput()
		if err != nil {
			return rc.fail(err)
		}
	}
	// setup and start the progress indicator
	multiSpinner := progress.NewMultiSpinner()
	labels := []string{localLabel}
	if FlagInput != "" {
		labels = labels[:0]
		for _, output := range outputs {
			labels = append(labels, output.label)
		}
	}
	for _, label := range labels {
		if err := multiSpinner.AddSpinner(label); err != nil {
			return rc.fail(err)
		}
	}
	multiSpinner.Start()
	if FlagInput == "" {
		var output sadfOutput
		output, err = rc.outputFromCommand(ctx, multiSpinner.Status)
		if err != nil {
			multiSpinner.Finish()
			return rc.fail(err)
		}
		outputs = append(outputs, output)
	}
	// we have output data so create the output directory
	if err := CreateOutputDir(appContext.OutputDir); err != nil {
		multiSpinner.Finish()
		return rc.fail(err)
	}
	// check report formats
	formats := FlagFormat
	if slices.Contains(formats, report.FormatAll) {
		formats = report.FormatOptions
	}
	// process the collected data and create the requested report(s)
	reportFilePaths, toStdout, err := rc.createReports(appContext, outputs, formats, multiSpinner.Status)
	multiSpinner.Finish()
	fmt.Println()
	if err != nil {
		return rc.fail(err)
	}
	for _, text := range toStdout {
		fmt.Print(text)
	}
	if len(reportFilePaths) > 0 {
		fmt.Println("Report files:")
	}
	for _, reportFilePath := range reportFilePaths {
		fmt.Printf("  %s\n", reportFilePath)
	}
	return nil
}

func (rc *ReportingCommand) fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	slog.Error(err.Error())
	rc.Cmd.SilenceUsage = true
	return err
}

// CreateOutputDir creates the output directory if it does not exist
func CreateOutputDir(outputDir string) error {
	err := os.MkdirAll(outputDir, 0755) // #nosec G301
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// FlagValidationError is used to report an error with a flag
func FlagValidationError(cmd *cobra.Command, msg string) error {
	err := errors.New(msg)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintf(os.Stderr, "See '%s --help' for usage details.\n", cmd.CommandPath())
	cmd.SilenceUsage = true
	return err
}

// writeReport writes the report bytes to the specified path.
func writeReport(reportBytes []byte, reportPath string) error {
	err := os.WriteFile(reportPath, reportBytes, 0644) // #nosec G306
	if err != nil {
		err = fmt.Errorf("failed to write report file: %v", err)
		fmt.Fprintln(os.Stderr, err)
		slog.Error(err.Error())
		return err
	}
	return nil
}

func (rc *ReportingCommand) reportPath(appContext AppContext, name string, ext string) string {
	post := ""
	if rc.ReportNamePost != "" {
		post = "_" + rc.ReportNamePost
	}
	return filepath.Join(appContext.OutputDir, fmt.Sprintf("%s%s%s", name, post, ext))
}

// createReports reshapes each sadf output and creates the requested report(s). Text
// that belongs on stdout is returned so that it is printed after the progress
// indicator stops.
func (rc *ReportingCommand) createReports(appContext AppContext, outputs []sadfOutput, formats []string, statusUpdate progress.MultiSpinnerUpdateFunc) (reportFilePaths []string, toStdout []string, err error) {
	for _, output := range outputs {
		var paths []string
		var text string
		paths, text, err = rc.createReport(appContext, output, formats, statusUpdate)
		if err != nil {
			_ = statusUpdate(output.label, progress.StatusFailed)
			return
		}
		_ = statusUpdate(output.label, progress.StatusDone)
		reportFilePaths = append(reportFilePaths, paths...)
		if text != "" {
			toStdout = append(toStdout, text)
		}
	}
	return
}

func (rc *ReportingCommand) createReport(appContext AppContext, output sadfOutput, formats []string, statusUpdate progress.MultiSpinnerUpdateFunc) (reportFilePaths []string, toStdout string, err error) {
	_ = statusUpdate(output.label, progress.StatusReshaping)
	groups, err := rc.NewGroups()
	if err != nil {
		return
	}
	sadfReport, decodeErr := command.Decode(output.output, groups)
	name := output.name
	if name == "" {
		nodeName := ""
		if sadfReport != nil {
			nodeName = sadfReport.Host.NodeName
		}
		name = util.SanitizeFileName(nodeName, AppName)
	}
	// save the sadf output before processing it, so that it is kept even if processing fails
	if rc.SaveRaw && !output.saved {
		rawPath := rc.reportPath(appContext, name, report.RawExtension)
		if err = writeReport(output.output, rawPath); err != nil {
			return
		}
		reportFilePaths = append(reportFilePaths, rawPath)
	}
	if decodeErr != nil {
		err = fmt.Errorf("failed to process sadf output from %s: %w", output.label, decodeErr)
		return
	}
	allTableValues := table.FromReport(sadfReport)
	if err = table.Derive(allTableValues, rc.Derived); err != nil {
		err = fmt.Errorf("failed to derive fields: %w", err)
		return
	}
	if !rc.NoSummary {
		allTableValues = append(allTableValues, table.Summary(allTableValues))
	}
	// special case - add tableValues for the application version and run
	allTableValues = append(allTableValues, table.TableValues{
		Name: TableNameRun,
		Path: []string{TableNameRun},
		Fields: []table.Field{
			{Name: "Version", Values: []string{appContext.Version}},
			{Name: "Args", Values: []string{strings.Join(os.Args, " ")}},
			{Name: "ReportID", Values: []string{appContext.ReportID}},
			{Name: "OutputDir", Values: []string{appContext.OutputDir}},
			{Name: "Source", Values: []string{output.label}},
		},
	})
	_ = statusUpdate(output.label, progress.StatusRendering)
	meta := report.Meta{ReportID: appContext.ReportID, HostName: sadfReport.Host.NodeName}
	for _, format := range formats {
		var reportBytes []byte
		reportBytes, err = report.Create(format, allTableValues, meta)
		if err != nil {
			err = fmt.Errorf("failed to create report: %w", err)
			return
		}
		if len(formats) == 1 && format == report.FormatTxt {
			toStdout = fmt.Sprintf("%s:\n%s", name, reportBytes)
		}
		reportPath := rc.reportPath(appContext, name, "."+format)
		if err = writeReport(reportBytes, reportPath); err != nil {
			err = fmt.Errorf("failed to write report: %w", err)
			return
		}
		reportFilePaths = append(reportFilePaths, reportPath)
	}
	return
}

// outputsFromInput reads the raw file(s), in name order
func outputsFromInput() ([]sadfOutput, error) {
	rawInputs, err := report.ReadRawInputs(FlagInput)
	if err != nil {
		err = fmt.Errorf("failed to read raw file(s): %w", err)
		return nil, err
	}
	outputs := make([]sadfOutput, 0, len(rawInputs))
	for _, rawInput := range rawInputs {
		outputs = append(outputs, sadfOutput{
			label:  filepath.Base(rawInput.Path),
			name:   util.FileNameWithoutExt(rawInput.Path),
			output: rawInput.Output,
			saved:  true,
		})
	}
	return outputs, nil
}

// outputFromCommand runs sadf on this host
func (rc *ReportingCommand) outputFromCommand(ctx context.Context, statusUpdate progress.MultiSpinnerUpdateFunc) (sadfOutput, error) {
	status := progress.StatusRunning
	if rc.Command.DataFile != "" {
		status += " on " + rc.Command.DataFile
	}
	_ = statusUpdate(localLabel, status)
	groups, err := rc.NewGroups()
	if err != nil {
		return sadfOutput{}, err
	}
	rc.Command.Groups = groups
	out, err := rc.Command.Output(ctx)
	if err != nil {
		_ = statusUpdate(localLabel, progress.StatusFailed)
		return sadfOutput{}, err
	}
	return sadfOutput{label: localLabel, output: out}, nil
}
