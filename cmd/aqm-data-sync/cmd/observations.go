package cmd

import (
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/spf13/cobra"
)

var observationsCmd = &cobra.Command{
	Use:   "observations",
	Short: "Download the AirNow observation archives",
	Long: `Download the daily AirNow observation archives the evaluation compares
model output against. Without explicit dates the AEROMMA 2023 campaign
window applies.`,
	Example: `% aqm-data-sync observations --dst-dir ./observations
% aqm-data-sync observations --dst-dir ./observations --first-cycle-date 20230601 --last-cycle-date 20230630`,
	Run: func(cmd *cobra.Command, args []string) {
		runDataSync(model.KindObservations, cmd)
	},
}

func init() {
	requiredFlags := []string{addDstDirFlag(observationsCmd)}

	addFirstCycleDateFlag(observationsCmd)
	addLastCycleDateFlag(observationsCmd)
	addMaxConcurrentRequestsFlag(observationsCmd)
	addDryRunFlag(observationsCmd)
	addSnippetFlag(observationsCmd)

	for _, flag := range requiredFlags {
		err := observationsCmd.MarkFlagRequired(flag)
		if err != nil {
			wrapFatalln("mark required flag", err)
			return
		}
	}

	rootCmd.AddCommand(observationsCmd)
}
