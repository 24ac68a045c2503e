package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/choplin/dbhelpers/internal/config"
	"github.com/choplin/dbhelpers/internal/logging"
)

func newRootCmd() *cobra.Command {
	var (
		logFormat string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:          "dbhelpers",
		Short:        "dbhelpers - SQL helpers for the library database exercises",
		Long:         "dbhelpers extracts the SQL typed in captured mysql sessions and generates scripts that reset the exercise tables.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A broken .env only matters to truncate --exec; report it once logging is up.
			envErr := config.LoadEnvFile()
			if !cmd.Flags().Changed("log-format") {
				logFormat = config.GetLogFormat()
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = config.GetLogLevel()
			}
			logging.Init(cmd.ErrOrStderr(), logging.ParseFormat(logFormat), logging.ParseLevel(logLevel))
			if envErr != nil {
				slog.Warn("ignoring unreadable .env file", "error", envErr)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "pretty", "Log format: pretty, json, or text")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newTruncateCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}
