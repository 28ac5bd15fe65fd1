package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gcal-mcp application
var rootCmd = &cobra.Command{
	Use:   "gcal-mcp",
	Short: "Google Calendar for AI assistants",
	Long: `gcal-mcp exposes the Google Calendar v3 API as MCP (Model Context Protocol)
tools: events, calendars, the calendar list, access rules, free/busy,
colors, settings and push notification channels.

It can run as:
  - An MCP server for AI assistants (serve)
  - A terminal agenda of upcoming events (agenda)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gcal-mcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAgendaCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
