package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/choplin/dbhelpers/internal/config"
	"github.com/choplin/dbhelpers/internal/database"
	"github.com/choplin/dbhelpers/internal/transcript"
	"github.com/choplin/dbhelpers/internal/usecase"
)

func newExtractCmd() *cobra.Command {
	var (
		outputPath   string
		prompt       string
		continuation bool
		record       bool
	)

	cmd := &cobra.Command{
		Use:   "extract [transcript]",
		Short: "Extract SQL typed at the mysql prompt from a console log",
		Long: "Reads a captured console session and writes the text after every prompt line to <transcript>.sql.\n" +
			"Without an argument the transcript defaults to " + config.DefaultTranscriptPath + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := config.DefaultTranscriptPath
			if len(args) == 1 {
				inputPath = args[0]
			}

			res, err := usecase.Extract(usecase.ExtractInput{
				InputPath:    inputPath,
				OutputPath:   outputPath,
				Prompt:       prompt,
				Continuation: continuation,
			})
			if err != nil {
				return err
			}

			slog.Info("extracted statements",
				"input", res.InputPath,
				"output", res.OutputPath,
				"statements", res.Statements)

			if record {
				if err := recordExtract(cmd.Context(), res); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: <transcript>"+transcript.OutputSuffix+")")
	cmd.Flags().StringVar(&prompt, "prompt", transcript.DefaultPrompt, "Prompt token that marks typed commands")
	cmd.Flags().BoolVar(&continuation, "continuation", false, "Also capture '->' continuation lines of multi-line statements")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run and snapshot the script in the history index")

	return cmd
}

func recordExtract(ctx context.Context, res transcript.Result) error {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return err
	}
	defer func() {
		_ = database.CloseDatabase(dbCtx)
	}()

	id, err := usecase.NewHistory(dbCtx).RecordExtract(ctx, res)
	if err != nil {
		return err
	}
	slog.Info("recorded run", "id", id)
	return nil
}
