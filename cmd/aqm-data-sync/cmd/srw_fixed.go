package cmd

import (
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/spf13/cobra"
)

var srwFixedCmd = &cobra.Command{
	Use:   "srw-fixed",
	Short: "Download the static SRW input data",
	Long: `Download the fixed input data of the Short Range Weather application: fix
files and NaturalEarth shapes. This dataset does not vary with the forecast
cycle, so no dates apply.`,
	Example: `% aqm-data-sync srw-fixed --dst-dir ./srw-fixed-data`,
	Run: func(cmd *cobra.Command, args []string) {
		runDataSync(model.KindSRWFixed, cmd)
	},
}

func init() {
	requiredFlags := []string{addDstDirFlag(srwFixedCmd)}

	addMaxConcurrentRequestsFlag(srwFixedCmd)
	addDryRunFlag(srwFixedCmd)

	for _, flag := range requiredFlags {
		err := srwFixedCmd.MarkFlagRequired(flag)
		if err != nil {
			wrapFatalln("mark required flag", err)
			return
		}
	}

	rootCmd.AddCommand(srwFixedCmd)
}
