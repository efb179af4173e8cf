package cmd

import (
	"time"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/transfer"
	"github.com/spf13/cobra"
)

type flagsT struct {
	sync struct {
		DstDir                string
		FirstCycleDate        string
		LastCycleDate         string
		ForecastHour          int
		UseCase               string
		MaxConcurrentRequests int
		DryRun                bool
		Snippet               bool
	}
	root struct {
		config   string
		logLevel string
		cpuProf  bool
		timeout  time.Duration
	}
}

var datasyncFlags = flagsT{}

func addDstDirFlag(cmd *cobra.Command) string {
	dstDir := "dst-dir"
	cmd.Flags().StringVar(&datasyncFlags.sync.DstDir, dstDir, "",
		"The directory the dataset is downloaded into. Created if missing")
	return dstDir
}

func addFirstCycleDateFlag(cmd *cobra.Command) string {
	firstCycleDate := "first-cycle-date"
	cmd.Flags().StringVar(&datasyncFlags.sync.FirstCycleDate, firstCycleDate, "",
		"The first forecast cycle to download, as yyyymmdd or yyyymmddhh. Required if --use-case is not provided")
	return firstCycleDate
}

func addLastCycleDateFlag(cmd *cobra.Command) string {
	lastCycleDate := "last-cycle-date"
	cmd.Flags().StringVar(&datasyncFlags.sync.LastCycleDate, lastCycleDate, "",
		"The final forecast cycle to download. If not provided, defaults to 24 hours after --first-cycle-date")
	return lastCycleDate
}

func addForecastHourFlag(cmd *cobra.Command) string {
	fcstHr := "fcst-hr"
	cmd.Flags().IntVar(&datasyncFlags.sync.ForecastHour, fcstHr, 0,
		"The forecast hour the forecast file walks start at")
	return fcstHr
}

func addUseCaseFlag(cmd *cobra.Command) string {
	useCase := "use-case"
	cmd.Flags().StringVar(&datasyncFlags.sync.UseCase, useCase, string(model.UseCaseUndefined),
		"A named preset pinning the cycle window, e.g. AEROMMA")
	return useCase
}

const maxConcurrentRequestsFlag = "max-concurrent-requests"

func addMaxConcurrentRequestsFlag(cmd *cobra.Command) string {
	maxConcurrentRequests := maxConcurrentRequestsFlag
	cmd.Flags().IntVar(&datasyncFlags.sync.MaxConcurrentRequests, maxConcurrentRequests, transfer.DefaultMaxConcurrent,
		"Maximum number of simultaneous download requests")
	return maxConcurrentRequests
}

func addDryRunFlag(cmd *cobra.Command) string {
	dryRun := "dry-run"
	cmd.Flags().BoolVar(&datasyncFlags.sync.DryRun, dryRun, false,
		"Report what would be downloaded without writing anything")
	return dryRun
}

func addSnippetFlag(cmd *cobra.Command) string {
	snippet := "snippet"
	cmd.Flags().BoolVar(&datasyncFlags.sync.Snippet, snippet, false,
		"Download data for the first two forecast cycles only, handy for a quick trial run")
	return snippet
}

const logLevelFlag = "loglevel"

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := logLevelFlag
	cmd.PersistentFlags().StringVar(&datasyncFlags.root.logLevel, loglevel, "info",
		"The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	return loglevel
}

func addConfigFlag(cmd *cobra.Command) string {
	config := "config"
	cmd.PersistentFlags().StringVar(&datasyncFlags.root.config, config, "",
		"Set the path to the config file")
	return config
}

func addCPUProfFlag(cmd *cobra.Command) string {
	c := "cpuprof"
	cmd.PersistentFlags().BoolVar(&datasyncFlags.root.cpuProf, c, false, "Toggle runtime profiling")
	return c
}

func addTimeoutFlag(cmd *cobra.Command) string {
	timeout := "timeout"
	cmd.PersistentFlags().DurationVar(&datasyncFlags.root.timeout, timeout, 0,
		"Give up on the whole sync after this delay, e.g. 45m. Zero means no limit")
	return timeout
}
