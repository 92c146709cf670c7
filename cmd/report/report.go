// Package report is a subcommand of the root command. It turns the system activity
// recorded by sysstat into reports.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sadf/internal/command"
	"sadf/internal/common"
	"sadf/internal/config"
	"sadf/internal/report"
	"sadf/internal/sadf"
	"sadf/internal/util"
)

const cmdName = "report"

var examples = []string{
	fmt.Sprintf("  CPU utilization recorded today:          $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Memory and queue from 08:00 to 12:00:    $ %s %s --memory --queue --start 08:00 --end 12:00", common.AppName, cmdName),
	fmt.Sprintf("  Network devices and sockets, as html:    $ %s %s --net-dev --net-sock --format html", common.AppName, cmdName),
	fmt.Sprintf("  All categories from a data file:         $ %s %s --all --datafile /var/log/sa/sa04", common.AppName, cmdName),
	fmt.Sprintf("  Categories and derived fields from yaml: $ %s %s --config sadf.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Render saved sadf output:                $ %s %s --input node01.raw --memory --format prom", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Generate reports from system activity data",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagAll bool
	// categories
	flagCpu       bool
	flagCpuAll    bool
	flagMemory    bool
	flagMemoryAll bool
	flagIo        bool
	flagPaging    bool
	flagKernel    bool
	flagQueue     bool
	flagHugePages bool
	flagSwapPages bool
	flagProcess   bool
	flagDisk      bool
	flagNetwork   bool
	flagNetDev    bool
	flagNetEDev   bool
	flagNetNFS    bool
	flagNetNFSD   bool
	flagNetSock   bool

	flagCores     string
	flagStart     string
	flagEnd       string
	flagInterval  int
	flagDataFile  string
	flagConfig    string
	flagTimeout   int
	flagNoSummary bool
	flagSaveRaw   bool
)

// flag names
const (
	flagAllName = "all"
	// categories
	flagCpuName       = "cpu"
	flagCpuAllName    = "cpu-all"
	flagMemoryName    = "memory"
	flagMemoryAllName = "memory-all"
	flagIoName        = "io"
	flagPagingName    = "paging"
	flagKernelName    = "kernel"
	flagQueueName     = "queue"
	flagHugePagesName = "hugepages"
	flagSwapPagesName = "swap-pages"
	flagProcessName   = "process"
	flagDiskName      = "disk"
	flagNetworkName   = "network"
	flagNetDevName    = "net-dev"
	flagNetEDevName   = "net-edev"
	flagNetNFSName    = "net-nfs"
	flagNetNFSDName   = "net-nfsd"
	flagNetSockName   = "net-sock"

	flagCoresName     = "cores"
	flagStartName     = "start"
	flagEndName       = "end"
	flagIntervalName  = "interval"
	flagDataFileName  = "datafile"
	flagConfigName    = "config"
	flagTimeoutName   = "timeout"
	flagNoSummaryName = "no-summary"
	flagSaveRawName   = "save-raw"
)

// category maps a flag to the sadf category it selects
type category struct {
	FlagName  string
	FlagVar   *bool
	Help      string
	Group     string // category name, see sadf.Names
	AllFields bool   // report all fields of the category
	Network   string // network sub-category, empty for all of them
}

// categories are listed in report order
var categories = []category{
	{FlagName: flagCpuName, FlagVar: &flagCpu, Help: "CPU utilization per core", Group: sadf.LabelCPULoad},
	{FlagName: flagCpuAllName, FlagVar: &flagCpuAll, Help: "CPU utilization per core, all fields", Group: sadf.LabelCPULoad, AllFields: true},
	{FlagName: flagMemoryName, FlagVar: &flagMemory, Help: "Memory utilization", Group: sadf.LabelMemory},
	{FlagName: flagMemoryAllName, FlagVar: &flagMemoryAll, Help: "Memory utilization, all fields", Group: sadf.LabelMemory, AllFields: true},
	{FlagName: flagPagingName, FlagVar: &flagPaging, Help: "Paging", Group: sadf.LabelPaging},
	{FlagName: flagIoName, FlagVar: &flagIo, Help: "I/O and transfer rates", Group: sadf.LabelIO},
	{FlagName: flagDiskName, FlagVar: &flagDisk, Help: "Block device activity per device", Group: sadf.LabelDisk},
	{FlagName: flagNetworkName, FlagVar: &flagNetwork, Help: "All network statistics", Group: sadf.LabelNetwork},
	{FlagName: flagNetDevName, FlagVar: &flagNetDev, Help: "Network interface traffic", Group: sadf.LabelNetwork, Network: "dev"},
	{FlagName: flagNetEDevName, FlagVar: &flagNetEDev, Help: "Network interface errors", Group: sadf.LabelNetwork, Network: "edev"},
	{FlagName: flagNetNFSName, FlagVar: &flagNetNFS, Help: "NFS client activity", Group: sadf.LabelNetwork, Network: "nfs"},
	{FlagName: flagNetNFSDName, FlagVar: &flagNetNFSD, Help: "NFS server activity", Group: sadf.LabelNetwork, Network: "nfsd"},
	{FlagName: flagNetSockName, FlagVar: &flagNetSock, Help: "Sockets in use", Group: sadf.LabelNetwork, Network: "sock"},
	{FlagName: flagHugePagesName, FlagVar: &flagHugePages, Help: "Hugepages utilization", Group: sadf.LabelHugePages},
	{FlagName: flagKernelName, FlagVar: &flagKernel, Help: "Kernel tables", Group: sadf.LabelKernel},
	{FlagName: flagQueueName, FlagVar: &flagQueue, Help: "Run queue length and load averages", Group: sadf.LabelQueue},
	{FlagName: flagProcessName, FlagVar: &flagProcess, Help: "Task creation and context switches", Group: sadf.LabelProcessAndContextSwitch},
	{FlagName: flagSwapPagesName, FlagVar: &flagSwapPages, Help: "Swapping", Group: sadf.LabelSwapPages},
}

// runConfig is the run configuration after flags are merged into the config file
var runConfig config.Config

func init() {
	// set up category flags
	for _, cat := range categories {
		Cmd.Flags().BoolVar(cat.FlagVar, cat.FlagName, false, cat.Help)
	}
	// set up other flags
	Cmd.Flags().BoolVar(&flagAll, flagAllName, false, "")
	Cmd.Flags().StringVar(&flagCores, flagCoresName, "", "")
	Cmd.Flags().StringVar(&flagStart, flagStartName, "", "")
	Cmd.Flags().StringVar(&flagEnd, flagEndName, "", "")
	Cmd.Flags().IntVar(&flagInterval, flagIntervalName, 0, "")
	Cmd.Flags().StringVar(&flagDataFile, flagDataFileName, "", "")
	Cmd.Flags().StringVar(&flagConfig, flagConfigName, "", "")
	Cmd.Flags().IntVar(&flagTimeout, flagTimeoutName, 0, "")
	Cmd.Flags().StringVar(&common.FlagInput, common.FlagInputName, "", "")
	Cmd.Flags().StringSliceVar(&common.FlagFormat, common.FlagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().BoolVar(&flagNoSummary, flagNoSummaryName, false, "")
	Cmd.Flags().BoolVar(&flagSaveRaw, flagSaveRawName, false, "")

	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if cmd.Parent().PersistentFlags().Lookup(pf.Name).DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(pf.Name).DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagAllName,
			Help: "report all categories",
		},
	}
	for _, cat := range categories {
		flags = append(flags, common.Flag{
			Name: cat.FlagName,
			Help: cat.Help,
		})
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Categories (default: cpu)",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: flagCoresName,
			Help: "restrict CPU utilization to these cores, e.g., ALL or 0,2-3",
		},
		{
			Name: flagStartName,
			Help: "start of the reporting window, HH:MM[:SS], YYYY-MM-DD HH:MM[:SS] or RFC 3339, UTC unless a zone is given",
		},
		{
			Name: flagEndName,
			Help: "end of the reporting window, same forms as --start",
		},
		{
			Name: flagIntervalName,
			Help: "seconds between reported statistics, 0 for the recording interval",
		},
		{
			Name: flagDataFileName,
			Help: "sa data file to read, e.g., /var/log/sa/sa04, today's file if not set",
		},
		{
			Name: flagTimeoutName,
			Help: "seconds to wait for sadf, 0 for no timeout",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Data Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: common.FlagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
		},
		{
			Name: flagNoSummaryName,
			Help: "leave the summary table out of the report",
		},
		{
			Name: flagSaveRawName,
			Help: fmt.Sprintf("save the sadf output as a \"%s\" file next to the reports", report.RawExtension),
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: flagConfigName,
			Help: "YAML run configuration with categories, derived fields and the reporting window, flags override it",
		},
		{
			Name: common.FlagInputName,
			Help: fmt.Sprintf("\"%s\" file, or directory containing \"%s\" files. Will skip running sadf and use the saved output for reports.", report.RawExtension, report.RawExtension),
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Advanced Options",
		Flags:     flags,
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	// validate format options
	formatOptions := append([]string{report.FormatAll}, report.FormatOptions...)
	for _, format := range common.FlagFormat {
		if !slices.Contains(formatOptions, format) {
			return common.FlagValidationError(cmd, fmt.Sprintf("format options are: %s", strings.Join(formatOptions, ", ")))
		}
	}
	if flagInterval < 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must be 0 or greater", flagIntervalName))
	}
	if flagTimeout < 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must be 0 or greater", flagTimeoutName))
	}
	// the sadf options have no effect on saved output
	if common.FlagInput != "" {
		for _, name := range []string{flagStartName, flagEndName, flagIntervalName, flagDataFileName, flagTimeoutName, flagSaveRawName} {
			if cmd.Flags().Lookup(name).Changed {
				return common.FlagValidationError(cmd, fmt.Sprintf("--%s cannot be used with --%s", name, common.FlagInputName))
			}
		}
	}
	var cfg config.Config
	if flagConfig != "" {
		loaded, err := config.Load(util.ExpandUser(flagConfig))
		if err != nil {
			return common.FlagValidationError(cmd, err.Error())
		}
		cfg = *loaded
	}
	mergeFlags(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	if _, _, err := window(cfg, time.Now()); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	if cfg.DataFile != "" && common.FlagInput == "" {
		exists, err := util.FileExists(util.ExpandUser(cfg.DataFile))
		if err != nil {
			return common.FlagValidationError(cmd, err.Error())
		}
		if !exists {
			return common.FlagValidationError(cmd, fmt.Sprintf("data file does not exist: %s", cfg.DataFile))
		}
	}
	runConfig = cfg
	return nil
}

// mergeFlags overrides the configuration with the flags that were set. Selecting any
// category on the command line replaces the configured categories.
func mergeFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if groups := groupsFromFlags(); len(groups) > 0 {
		cfg.Groups = groups
	}
	if flags.Lookup(flagStartName).Changed {
		cfg.Start = flagStart
	}
	if flags.Lookup(flagEndName).Changed {
		cfg.End = flagEnd
	}
	if flags.Lookup(flagIntervalName).Changed {
		cfg.Interval = flagInterval
	}
	if flags.Lookup(flagDataFileName).Changed {
		cfg.DataFile = flagDataFile
	}
	if flags.Lookup(flagTimeoutName).Changed {
		cfg.Timeout = flagTimeout
	}
}

// groupsFromFlags returns the selected categories in report order. A category
// selected by more than one flag is reported once, with the union of their options.
func groupsFromFlags() []config.Group {
	var groups []config.Group
	allNetwork := false
	for _, cat := range categories {
		selected := *cat.FlagVar
		if flagAll && !cat.AllFields && cat.Network == "" {
			selected = true
		}
		if cat.Group == sadf.LabelCPULoad && flagCores != "" && !cat.AllFields {
			selected = true
		}
		if !selected {
			continue
		}
		idx := slices.IndexFunc(groups, func(g config.Group) bool { return g.Name == cat.Group })
		if idx == -1 {
			groups = append(groups, config.Group{Name: cat.Group})
			idx = len(groups) - 1
		}
		g := &groups[idx]
		g.AllFields = g.AllFields || cat.AllFields
		if cat.Group == sadf.LabelCPULoad {
			g.Cores = flagCores
		}
		if cat.Group == sadf.LabelNetwork {
			if cat.Network == "" {
				allNetwork = true
			} else {
				g.Network = util.UniqueAppend(g.Network, cat.Network)
			}
		}
	}
	if allNetwork {
		for i := range groups {
			if groups[i].Name == sadf.LabelNetwork {
				groups[i].Network = nil
			}
		}
	}
	return groups
}

// window parses the start and end of the reporting window
func window(cfg config.Config, now time.Time) (start time.Time, end time.Time, err error) {
	if cfg.Start != "" {
		if start, err = command.ParseTime(cfg.Start, now); err != nil {
			err = fmt.Errorf("start: %w", err)
			return
		}
	}
	if cfg.End != "" {
		if end, err = command.ParseTime(cfg.End, now); err != nil {
			err = fmt.Errorf("end: %w", err)
			return
		}
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		err = fmt.Errorf("end (%s) must be after start (%s)", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return
}

// newGroups builds the field groups of a report, the default groups if none are selected
func newGroups(cfg config.Config) func() ([]sadf.FieldGroup, error) {
	return func() ([]sadf.FieldGroup, error) {
		groups, err := cfg.FieldGroups()
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 {
			return sadf.DefaultGroups(), nil
		}
		return groups, nil
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	start, end, err := window(runConfig, time.Now())
	if err != nil {
		return err
	}
	reportingCommand := common.ReportingCommand{
		Cmd: cmd,
		Command: &command.Command{
			Start:    start,
			End:      end,
			Interval: runConfig.Interval,
			DataFile: util.ExpandUser(runConfig.DataFile),
			Timeout:  time.Duration(runConfig.Timeout) * time.Second,
		},
		NewGroups: newGroups(runConfig),
		Derived:   runConfig.Derived,
		NoSummary: flagNoSummary,
		SaveRaw:   flagSaveRaw,
	}
	return reportingCommand.Run()
}
