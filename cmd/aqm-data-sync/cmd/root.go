package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aqm-data-sync",
	Short: "aqm-data-sync mirrors UFS-AQM datasets for local evaluation",
	Long: `aqm-data-sync downloads the datasets an air quality model evaluation
needs, from the NOAA UFS SRW public S3 bucket into a local directory tree.

Downloads run concurrently and are resumable: files already present locally
are skipped, so an interrupted sync picks up where it left off. The buckets
are public, no AWS credentials are required.
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if datasyncFlags.root.cpuProf {
			f, err := os.Create("cpu.prof")
			if err != nil {
				log.Fatal(err)
			}
			_ = pprof.StartCPUProfile(f)
		}
	},
	// upstream api note: *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if datasyncFlags.root.cpuProf {
			pprof.StopCPUProfile()
		}
	},
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	addLogLevelFlag(rootCmd)
	addConfigFlag(rootCmd)
	addCPUProfFlag(rootCmd)
	addTimeoutFlag(rootCmd)
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile := os.Getenv("AQM_DATA_SYNC_CONFIG"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if datasyncFlags.root.config != "" {
		viper.SetConfigFile(datasyncFlags.root.config)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.aqm-data-sync")
		viper.AddConfigPath("/etc/aqm-data-sync")
		viper.SetConfigName("aqm-data-sync")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
}
