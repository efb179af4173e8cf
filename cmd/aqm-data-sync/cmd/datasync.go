package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/datasync"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/dlogger"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// testSourceStore substitutes the S3 source during tests.
var testSourceStore storage.Store

// buildRequest assembles the dataset request from the command line.
func buildRequest(kind model.DatasetKind) (model.DatasetRequest, error) {
	useCase, err := model.ParseUseCase(datasyncFlags.sync.UseCase)
	if err != nil {
		return model.DatasetRequest{}, err
	}
	req := model.DatasetRequest{
		Kind:         kind,
		UseCase:      useCase,
		ForecastHour: datasyncFlags.sync.ForecastHour,
		Snippet:      datasyncFlags.sync.Snippet,
	}
	if v := datasyncFlags.sync.FirstCycleDate; v != "" {
		req.FirstCycle, err = model.ParseForecastCycle(v)
		if err != nil {
			return model.DatasetRequest{}, err
		}
	}
	if v := datasyncFlags.sync.LastCycleDate; v != "" {
		req.LastCycle, err = model.ParseForecastCycle(v)
		if err != nil {
			return model.DatasetRequest{}, err
		}
	} else if !req.FirstCycle.IsZero() {
		// without an explicit end the window spans two cycles, 24 hours apart
		req.LastCycle = req.FirstCycle.Next()
	}
	return req, nil
}

// resolveConcurrency honors an explicit flag over the config file value.
func resolveConcurrency(cmd *cobra.Command) int {
	if cmd.Flags().Changed(maxConcurrentRequestsFlag) {
		return datasyncFlags.sync.MaxConcurrentRequests
	}
	if config != nil && config.Concurrency != 0 {
		return config.Concurrency
	}
	return datasyncFlags.sync.MaxConcurrentRequests
}

// resolveLogLevel honors an explicit flag over the config file value.
func resolveLogLevel() string {
	if rootCmd.PersistentFlags().Changed(logLevelFlag) || config == nil || config.LogLevel == "" {
		return datasyncFlags.root.logLevel
	}
	return config.LogLevel
}

// runDataSync builds and runs the sync job for one dataset kind. It is
// the single Run implementation behind the three dataset commands.
func runDataSync(kind model.DatasetKind, cmd *cobra.Command) {
	req, err := buildRequest(kind)
	if err != nil {
		wrapFatalln("parse command line", err)
		return
	}

	logger, err := dlogger.GetLogger(resolveLogLevel())
	if err != nil {
		wrapFatalln("set log level", err)
		return
	}

	opts := []datasync.Option{
		datasync.DestinationPath(datasyncFlags.sync.DstDir),
		datasync.MaxConcurrent(resolveConcurrency(cmd)),
		datasync.DryRun(datasyncFlags.sync.DryRun),
		datasync.Logger(logger),
	}
	if config != nil {
		if config.Region != "" {
			opts = append(opts, datasync.AWSRegion(config.Region))
		}
		if config.Endpoint != "" {
			opts = append(opts, datasync.Endpoint(config.Endpoint))
		}
		if config.Retries > 0 {
			opts = append(opts, datasync.MaxRetries(config.Retries))
		}
	}
	if testSourceStore != nil {
		opts = append(opts, datasync.SourceStore(testSourceStore))
	}

	job, err := datasync.New(req, opts...)
	if err != nil {
		wrapFatalln("configure sync", err)
		return
	}

	// interrupts cancel the run: in-flight downloads drain, the partial
	// result is reported, and a later invocation resumes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if datasyncFlags.root.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, datasyncFlags.root.timeout)
		defer cancel()
	}

	result, err := job.Run(ctx)
	printSummary(result)
	if err != nil {
		wrapFatalWithCodef(1, "sync incomplete: %v", err)
		return
	}
}

func printSummary(result model.SyncResult) {
	if result.DryRun {
		infoLogger.Println(color.YellowString("DRY RUN: no files were downloaded"))
	}
	infoLogger.Printf("completed: %d, skipped: %d, failed: %d (%s in %v)",
		result.Completed, result.Skipped, result.Failed,
		units.HumanSize(float64(result.Bytes)), result.Duration.Round(time.Millisecond))
	for _, failure := range result.Failures {
		infoLogger.Println(color.RedString("failed on %s: %s", failure.Key, failure.Reason))
	}
}
