package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyslogHandlerFormat(t *testing.T) {
	h := &SyslogHandler{logLeveler: slog.LevelInfo}
	withAttrs := h.WithAttrs([]slog.Attr{slog.String("reportID", "run-1")}).(*SyslogHandler)
	r := slog.NewRecord(time.Now(), slog.LevelWarn, "derived field matched no table", 0)
	r.AddAttrs(slog.String("name", "busy"), slog.Int("row", 2))

	assert.Equal(t, `level=WARN msg="derived field matched no table" reportID="run-1" name="busy" row="2"`, withAttrs.format(r))
	// the parent handler is unchanged
	assert.Empty(t, h.attrs)
}

func TestSyslogHandlerEnabled(t *testing.T) {
	h := &SyslogHandler{logLeveler: slog.LevelInfo}
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
