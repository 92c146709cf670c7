// Package command runs sysstat's sadf and turns its JSON output into a sadf.Report.
package command

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"sadf/internal/sadf"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// DefaultBinary is the sadf executable looked up in PATH.
const DefaultBinary = "sadf"

var (
	// ErrCommandFailed is returned when sadf exits non-zero or writes to standard error.
	ErrCommandFailed = errors.New("sadf command failed")
	// ErrMalformedOutput is returned when sadf output is not the expected JSON document.
	ErrMalformedOutput = errors.New("malformed output from sadf")
)

// sadf and sar localize times and numbers unless told otherwise
var sadfEnv = []string{
	"S_TIME_FORMAT=ISO",
	"S_TIME_DEF_TIME=UTC",
	"LC_ALL=C",
}

// Command describes one sadf invocation.
type Command struct {
	Binary   string           // sadf executable, DefaultBinary if empty
	Start    time.Time        // start of the report window, UTC; zero for the start of the data file
	End      time.Time        // end of the report window, UTC; zero for the end of the data file
	Interval int              // seconds between reported statistics; 0 for the recording interval
	DataFile string           // sa data file; empty for today's file
	Groups   []sadf.FieldGroup // categories to report; sadf.DefaultGroups() if empty
	Timeout  time.Duration    // 0 for no timeout
	Location *time.Location   // zone sadf interprets -s/-e in; time.Local if nil

	run runFunc
}

// Args returns the sadf arguments: sadf options, then '--', then the sar options
// of every group.
func (c *Command) Args() []string {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	args := []string{"-j"}
	if !c.Start.IsZero() {
		args = append(args, "-s", sadfTime(c.Start, loc))
	}
	if !c.End.IsZero() {
		args = append(args, "-e", sadfTime(c.End, loc))
	}
	if c.Interval > 0 {
		args = append(args, strconv.Itoa(c.Interval))
	}
	if c.DataFile != "" {
		args = append(args, c.DataFile)
	}
	args = append(args, "--")
	args = append(args, sadf.Request(c.groups())...)
	return args
}

// Env returns the environment sadf runs with: the current environment plus the
// variables that fix its time and number formats.
func (c *Command) Env() []string {
	return append(os.Environ(), sadfEnv...)
}

func (c *Command) groups() []sadf.FieldGroup {
	if len(c.Groups) == 0 {
		c.Groups = sadf.DefaultGroups()
	}
	return c.Groups
}

func (c *Command) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

// Output runs sadf and returns its standard output.
func (c *Command) Output(ctx context.Context) ([]byte, error) {
	run := c.run
	if run == nil {
		run = runLocalCommand
	}
	args := c.Args()
	slog.Info("running sadf", slog.String("binary", c.binary()), slog.String("args", strings.Join(args, " ")))
	stdout, stderr, exitCode, err := run(ctx, c.binary(), args, c.Env(), c.Timeout)
	if err != nil {
		slog.Error("sadf failed", slog.Int("exitCode", exitCode), slog.String("stderr", stderr), slog.String("error", err.Error()))
		return nil, errors.Wrapf(ErrCommandFailed, "%v: %s", err, strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stderr) != "" {
		slog.Error("sadf wrote to stderr", slog.String("stderr", stderr))
		return nil, errors.Wrap(ErrCommandFailed, strings.TrimSpace(stderr))
	}
	return []byte(stdout), nil
}

// Run runs sadf and assembles the report of the first host. It also returns the raw
// sadf output so that it can be saved and replayed with Decode.
func (c *Command) Run(ctx context.Context) (*sadf.Report, []byte, error) {
	raw, err := c.Output(ctx)
	if err != nil {
		return nil, nil, err
	}
	report, err := Decode(raw, c.groups())
	if err != nil {
		return nil, raw, err
	}
	return report, raw, nil
}

type sadfDocument struct {
	Sysstat *struct {
		Hosts []map[string]any `json:"hosts"`
	} `json:"sysstat"`
}

// Decode parses sadf -j output and assembles the report of its first host.
func Decode(raw []byte, groups []sadf.FieldGroup) (*sadf.Report, error) {
	var doc sadfDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(ErrMalformedOutput, "invalid JSON: %v", err)
	}
	if doc.Sysstat == nil || len(doc.Sysstat.Hosts) == 0 || doc.Sysstat.Hosts[0] == nil {
		return nil, errors.Wrap(ErrMalformedOutput, "sysstat.hosts[0] not found")
	}
	if len(doc.Sysstat.Hosts) > 1 {
		slog.Warn("sadf output has more than one host, using the first", slog.Int("hosts", len(doc.Sysstat.Hosts)))
	}
	if len(groups) == 0 {
		groups = sadf.DefaultGroups()
	}
	report, err := sadf.NewReport(doc.Sysstat.Hosts[0], groups)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assemble sadf report")
	}
	return report, nil
}
