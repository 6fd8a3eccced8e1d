package main

import (
	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/api"
	"github.com/zkjiang/autoabstract/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "autoabstract",
	Short: "LLM-powered structured data abstraction from clinical notes",
	Long: `AutoAbstract turns free-text clinical notes into structured records
using an LLM constrained by a JSON schema.

Capabilities:
  - Default injury surveillance schema plus fully custom field sets
  - Preset schemas for common abstraction tasks (meds recon, billing, discharge)
  - Strict schema-constrained extraction via OpenRouter
  - JSON, CSV and XLSX export of abstracted records`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.autoabstract/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "autoabstract home directory (default: ~/.autoabstract)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
