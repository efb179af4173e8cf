package cmd

import (
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/spf13/cobra"
)

var configGen = &cobra.Command{
	Use:   "generate",
	Short: "Generate a config file",
	Long:  "Generate a starter config for aqm-data-sync. The config file is placed in $HOME/.aqm-data-sync/aqm-data-sync.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		usr, err := user.Current()
		if usr == nil || err != nil {
			wrapFatalln("could not get home directory for user", err)
			return
		}
		cfg := CLIConfig{
			LogLevel:    datasyncFlags.root.logLevel,
			Concurrency: datasyncFlags.sync.MaxConcurrentRequests,
		}
		o, err := yaml.Marshal(cfg)
		if err != nil {
			wrapFatalln("serialize config to yaml", err)
			return
		}
		target := filepath.Join(usr.HomeDir, ".aqm-data-sync")
		_ = os.Mkdir(target, 0777)
		err = os.WriteFile(filepath.Join(target, "aqm-data-sync.yaml"), o, 0666)
		if err != nil {
			wrapFatalln("write config file", err)
			return
		}
		infoLogger.Println("config file written to", filepath.Join(target, "aqm-data-sync.yaml"))
	},
}

func init() {
	addMaxConcurrentRequestsFlag(configGen)

	configCmd.AddCommand(configGen)
}
