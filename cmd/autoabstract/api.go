package main

import (
	"github.com/spf13/cobra"

	"github.com/zkjiang/autoabstract/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running AutoAbstract server via HTTP.

These commands require a running server (autoabstract serve).
Use --server to specify a custom server URL.

Examples:
  autoabstract api health               # Check server health
  autoabstract api extract note.txt     # Abstract a clinical note
  autoabstract api result get           # Fetch the current result
  autoabstract api result export csv    # Download the result as CSV`,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Schema configuration commands",
}

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Extraction result commands",
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Sample note commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8421", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Extraction at top level of api
	apiCmd.AddCommand((&endpoints.ExtractEndpoint{}).Command(getServerURL))

	// Config as subcommand group
	configCmd.AddCommand((&endpoints.GetConfigEndpoint{}).Command(getServerURL))
	configCmd.AddCommand((&endpoints.ReplaceFieldsEndpoint{}).Command(getServerURL))
	configCmd.AddCommand((&endpoints.AddFieldEndpoint{}).Command(getServerURL))
	configCmd.AddCommand((&endpoints.DeleteFieldEndpoint{}).Command(getServerURL))
	configCmd.AddCommand((&endpoints.PresetConfigEndpoint{}).Command(getServerURL))
	configCmd.AddCommand((&endpoints.ResetConfigEndpoint{}).Command(getServerURL))
	configCmd.AddCommand((&endpoints.ConfigSchemaEndpoint{}).Command(getServerURL))

	// Results as subcommand group
	resultCmd.AddCommand((&endpoints.GetResultEndpoint{}).Command(getServerURL))
	resultCmd.AddCommand((&endpoints.ClearResultEndpoint{}).Command(getServerURL))
	resultCmd.AddCommand((&endpoints.ExportResultEndpoint{}).Command(getServerURL))

	// Sample notes as subcommand group
	notesCmd.AddCommand((&endpoints.ListNotePresetsEndpoint{}).Command(getServerURL))
	notesCmd.AddCommand((&endpoints.GetNotePresetEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(configCmd)
	apiCmd.AddCommand(resultCmd)
	apiCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(apiCmd)
}
