package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

// Options holds the construction options of every category. Each category reads
// only the options that apply to it.
type Options struct {
	AllFields bool
	Cores     string
	Network   NetworkOptions
}

// Category describes a category that can be requested by name.
type Category struct {
	Name string
	Help string
	New  func(Options) FieldGroup
}

var categories = []Category{
	{LabelCPULoad, "CPU utilization per core (sar -u)", func(o Options) FieldGroup {
		return NewCPULoad(CPULoadOptions{AllFields: o.AllFields, Cores: o.Cores})
	}},
	{LabelMemory, "memory utilization (sar -r)", func(o Options) FieldGroup {
		return NewMemory(MemoryOptions{AllFields: o.AllFields})
	}},
	{LabelPaging, "paging statistics (sar -B)", func(Options) FieldGroup { return NewPaging() }},
	{LabelIO, "I/O and transfer rates (sar -b)", func(Options) FieldGroup { return NewIO() }},
	{LabelDisk, "block device activity per device (sar -d)", func(Options) FieldGroup { return NewDisk() }},
	{LabelNetwork, "network statistics: dev, edev, nfs, nfsd, sock (sar -n)", func(o Options) FieldGroup {
		return NewNetwork(o.Network)
	}},
	{LabelHugePages, "hugepages utilization (sar -H)", func(Options) FieldGroup { return NewHugePages() }},
	{LabelKernel, "kernel tables: inodes, files, ptys (sar -v)", func(Options) FieldGroup { return NewKernel() }},
	{LabelQueue, "run queue length and load averages (sar -q)", func(Options) FieldGroup { return NewQueue() }},
	{LabelProcessAndContextSwitch, "task creation and context switches (sar -w)", func(Options) FieldGroup {
		return NewProcessAndContextSwitch()
	}},
	{LabelSwapPages, "swapping statistics (sar -W)", func(Options) FieldGroup { return NewSwapPages() }},
}

// Categories returns the known categories in presentation order.
func Categories() []Category {
	return categories
}

// Names returns the names of the known categories.
func Names() []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// Lookup creates a new field group for the named category. "cpu-load-all" is
// accepted as cpu-load with all fields.
func Lookup(name string, opts Options) (FieldGroup, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == LabelCPULoadAll {
		name = LabelCPULoad
		opts.AllFields = true
	}
	for _, c := range categories {
		if c.Name == name {
			return c.New(opts), nil
		}
	}
	return nil, fmt.Errorf("unknown category %q, known categories are: %s", name, strings.Join(Names(), ", "))
}

// DefaultGroups returns the groups used when none are requested.
func DefaultGroups() []FieldGroup {
	return []FieldGroup{NewCPULoad(CPULoadOptions{})}
}

// Request returns the sar options for a list of groups, in group order.
func Request(groups []FieldGroup) []string {
	var request []string
	for _, g := range groups {
		request = append(request, g.Request()...)
	}
	return request
}
