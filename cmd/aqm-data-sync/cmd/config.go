package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration persisted in the config file.
// Viper matches config keys against the field names, keep them single words.
type CLIConfig struct {
	LogLevel    string `json:"loglevel" yaml:"loglevel"`       // Default logging level
	Region      string `json:"region" yaml:"region"`           // AWS region of the source buckets
	Endpoint    string `json:"endpoint" yaml:"endpoint"`       // Alternate S3 endpoint, e.g. a local minio
	Concurrency int    `json:"concurrency" yaml:"concurrency"` // Default maximum simultaneous requests
	Retries     uint64 `json:"retries" yaml:"retries"`         // Retries with backoff on transient download errors
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the config",
	Long: `Commands to manage the aqm-data-sync CLI config.

The configuration holds the set of flags that do not change across runs,
analogous to "git config ...".`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
