package cmd

import (
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/spf13/cobra"
)

var timeVaryingCmd = &cobra.Command{
	Use:   "time-varying",
	Short: "Download the time varying model inputs",
	Long: `Download the per cycle model inputs: GFS analyses and forecast files, RAVE
fire emissions, GEFS aerosols, plus the restart files of the day before the
first cycle.

Cycles are enumerated every 24 hours from --first-cycle-date through
--last-cycle-date. With --use-case AEROMMA the 2023 campaign window applies
when no explicit dates are given.`,
	Example: `% aqm-data-sync time-varying --dst-dir ./aqm-data --first-cycle-date 2023060112
% aqm-data-sync time-varying --dst-dir ./aqm-data --use-case AEROMMA --snippet --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		runDataSync(model.KindTimeVarying, cmd)
	},
}

func init() {
	requiredFlags := []string{addDstDirFlag(timeVaryingCmd)}

	addFirstCycleDateFlag(timeVaryingCmd)
	addLastCycleDateFlag(timeVaryingCmd)
	addForecastHourFlag(timeVaryingCmd)
	addUseCaseFlag(timeVaryingCmd)
	addMaxConcurrentRequestsFlag(timeVaryingCmd)
	addDryRunFlag(timeVaryingCmd)
	addSnippetFlag(timeVaryingCmd)

	for _, flag := range requiredFlags {
		err := timeVaryingCmd.MarkFlagRequired(flag)
		if err != nil {
			wrapFatalln("mark required flag", err)
			return
		}
	}

	rootCmd.AddCommand(timeVaryingCmd)
}
