package sadf

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// groups.go defines the sadf categories this package knows how to reshape and the
// sar options that request them.

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// category labels, as they appear in sadf -j statistics entries
const (
	LabelCPULoad                 = "cpu-load"
	LabelCPULoadAll              = "cpu-load-all"
	LabelDisk                    = "disk"
	LabelHugePages               = "hugepages"
	LabelIO                      = "io"
	LabelKernel                  = "kernel"
	LabelMemory                  = "memory"
	LabelNetwork                 = "network"
	LabelNetDev                  = "net-dev"
	LabelNetEDev                 = "net-edev"
	LabelNetNFS                  = "net-nfs"
	LabelNetNFSD                 = "net-nfsd"
	LabelNetSock                 = "net-sock"
	LabelPaging                  = "paging"
	LabelProcessAndContextSwitch = "process-and-context-switch"
	LabelQueue                   = "queue"
	LabelSwapPages               = "swap-pages"
)

// CPULoadOptions configures the cpu-load category.
type CPULoadOptions struct {
	AllFields bool   // report all CPU fields (sar -u ALL); the label becomes cpu-load-all
	Cores     string // restrict to these cores (sar -P), e.g., "ALL" or "0,2-3"
}

// NewCPULoad creates a keyed group with one table per CPU ("all" is the aggregate).
func NewCPULoad(opts CPULoadOptions) *KeyedGroup {
	label := LabelCPULoad
	request := []string{"-u"}
	if opts.AllFields {
		label = LabelCPULoadAll
		request = append(request, "ALL")
	}
	if opts.Cores != "" {
		request = append(request, "-P", opts.Cores)
	}
	return NewKeyedGroup(label, request, "cpu")
}

// NewDisk creates a keyed group with one table per block device.
func NewDisk() *KeyedGroup {
	return NewKeyedGroup(LabelDisk, []string{"-d"}, "disk-device")
}

func NewHugePages() *FlatGroup {
	return NewFlatGroup(LabelHugePages, []string{"-H"}, nil)
}

// NewIO creates the io group. sadf nests read and write statistics; they are
// flattened into the columns bread, bwrtn, rtps, tps and wtps.
func NewIO() *FlatGroup {
	return NewFlatGroup(LabelIO, []string{"-b"}, flattenIO)
}

func flattenIO(record map[string]any) (map[string]any, error) {
	reads, err := nestedObject(record, "io-reads")
	if err != nil {
		return nil, err
	}
	writes, err := nestedObject(record, "io-writes")
	if err != nil {
		return nil, err
	}
	flat := make(map[string]any, 5)
	for _, f := range []struct {
		from  map[string]any
		field string
	}{
		{reads, "bread"},
		{reads, "rtps"},
		{writes, "bwrtn"},
		{writes, "wtps"},
		{record, "tps"},
	} {
		value, ok := f.from[f.field]
		if !ok {
			return nil, &MissingFieldError{Category: LabelIO, Field: f.field}
		}
		flat[f.field] = value
	}
	return flat, nil
}

func nestedObject(record map[string]any, field string) (map[string]any, error) {
	value, ok := record[field]
	if !ok {
		return nil, &MissingFieldError{Category: LabelIO, Field: field}
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &StructuralError{Category: LabelIO, Reason: fmt.Sprintf("%s is a %T, not an object", field, value)}
	}
	return m, nil
}

func NewKernel() *FlatGroup {
	return NewFlatGroup(LabelKernel, []string{"-v"}, nil)
}

// MemoryOptions configures the memory category.
type MemoryOptions struct {
	AllFields bool // sar -r ALL
}

func NewMemory(opts MemoryOptions) *FlatGroup {
	request := []string{"-r"}
	if opts.AllFields {
		request = append(request, "ALL")
	}
	return NewFlatGroup(LabelMemory, request, nil)
}

// NetworkOptions selects the network sub-categories. Selecting none selects all.
type NetworkOptions struct {
	Dev  bool
	EDev bool
	NFS  bool
	NFSD bool
	Sock bool
}

type netSubcategory struct {
	name    string // name used in configuration, e.g., "dev"
	keyword string // sar -n keyword
	label   string
	keyed   bool
	flag    func(*NetworkOptions) *bool
}

var netSubcategories = []netSubcategory{
	{"dev", "DEV", LabelNetDev, true, func(o *NetworkOptions) *bool { return &o.Dev }},
	{"edev", "EDEV", LabelNetEDev, true, func(o *NetworkOptions) *bool { return &o.EDev }},
	{"nfs", "NFS", LabelNetNFS, false, func(o *NetworkOptions) *bool { return &o.NFS }},
	{"nfsd", "NFSD", LabelNetNFSD, false, func(o *NetworkOptions) *bool { return &o.NFSD }},
	{"sock", "SOCK", LabelNetSock, false, func(o *NetworkOptions) *bool { return &o.Sock }},
}

// NetworkSubcategoryNames returns the names accepted by ParseNetworkOptions.
func NetworkSubcategoryNames() []string {
	names := make([]string, 0, len(netSubcategories))
	for _, sc := range netSubcategories {
		names = append(names, sc.name)
	}
	return names
}

// ParseNetworkOptions builds NetworkOptions from sub-category names, e.g., ["dev", "sock"].
// Names are case-insensitive and may also be the sub-category labels, e.g., "net-dev".
func ParseNetworkOptions(names []string) (NetworkOptions, error) {
	var opts NetworkOptions
	wanted := mapset.NewSet[string]()
	for _, name := range names {
		wanted.Add(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "net-"))
	}
	for _, sc := range netSubcategories {
		if wanted.Contains(sc.name) {
			*sc.flag(&opts) = true
			wanted.Remove(sc.name)
		}
	}
	if wanted.Cardinality() > 0 {
		unknown := wanted.ToSlice()
		slices.Sort(unknown)
		return opts, fmt.Errorf("unknown network sub-categories: %s (known: %s)", strings.Join(unknown, ", "), strings.Join(NetworkSubcategoryNames(), ", "))
	}
	return opts, nil
}

// resolve returns the selected sub-categories in fixed order. When nothing is
// selected, every sub-category is returned.
func (o NetworkOptions) resolve() []netSubcategory {
	var selected []netSubcategory
	for _, sc := range netSubcategories {
		if *sc.flag(&o) {
			selected = append(selected, sc)
		}
	}
	if len(selected) == 0 {
		return slices.Clone(netSubcategories)
	}
	return selected
}

// NewNetwork creates the composite network group (sar -n).
func NewNetwork(opts NetworkOptions) *CompositeGroup {
	selected := opts.resolve()
	keywords := make([]string, 0, len(selected))
	children := make([]FieldGroup, 0, len(selected))
	for _, sc := range selected {
		keywords = append(keywords, sc.keyword)
		if sc.keyed {
			children = append(children, NewKeyedGroup(sc.label, nil, "iface"))
		} else {
			children = append(children, NewFlatGroup(sc.label, nil, nil))
		}
	}
	return NewCompositeGroup(LabelNetwork, []string{"-n", strings.Join(keywords, ",")}, children...)
}

func NewPaging() *FlatGroup {
	return NewFlatGroup(LabelPaging, []string{"-B"}, nil)
}

func NewProcessAndContextSwitch() *FlatGroup {
	return NewFlatGroup(LabelProcessAndContextSwitch, []string{"-w"}, nil)
}

func NewQueue() *FlatGroup {
	return NewFlatGroup(LabelQueue, []string{"-q"}, nil)
}

func NewSwapPages() *FlatGroup {
	return NewFlatGroup(LabelSwapPages, []string{"-W"}, nil)
}
