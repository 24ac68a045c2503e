package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	// Import MySQL driver for database/sql
	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"github.com/choplin/dbhelpers/internal/config"
	"github.com/choplin/dbhelpers/internal/database"
	"github.com/choplin/dbhelpers/internal/truncate"
	"github.com/choplin/dbhelpers/internal/usecase"
)

func newTruncateCmd() *cobra.Command {
	var (
		tablesFile string
		execute    bool
		dsn        string
		timeout    time.Duration
		record     bool
	)

	cmd := &cobra.Command{
		Use:   "truncate",
		Short: "Print statements that empty the exercise tables",
		Long: "Prints 'set foreign_key_checks = 0;', one 'truncate table' per exercise table, and\n" +
			"'set foreign_key_checks = 1;'. Redirect the output to a file or pipe it into mysql.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables := truncate.DefaultTables()
			source := usecase.BuiltinSource
			if tablesFile != "" {
				raw, err := os.ReadFile(tablesFile)
				if err != nil {
					return err
				}
				tables = truncate.ParseTables(string(raw))
				source = tablesFile
			}

			if err := truncate.Write(cmd.OutOrStdout(), tables); err != nil {
				return err
			}

			if execute {
				if dsn == "" {
					dsn = config.GetDSN()
				}
				if dsn == "" {
					return errors.New("--exec requires --dsn or DB_DSN")
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				count, err := applyTruncate(ctx, dsn, tables)
				if err != nil {
					return err
				}
				slog.Info("truncated tables", "count", count)
			}

			if record {
				return recordTruncate(cmd.Context(), source, tables, execute)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tablesFile, "tables-file", "", "Read table names from a file, one per line, instead of the built-in list")
	cmd.Flags().BoolVar(&execute, "exec", false, "Also run the statements against MySQL")
	cmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN for --exec (default: $DB_DSN)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for --exec")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run and snapshot the script in the history index")

	return cmd
}

func applyTruncate(ctx context.Context, dsn string, tables []string) (int, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	defer conn.Close()

	return truncate.Apply(ctx, conn, tables)
}

func recordTruncate(ctx context.Context, source string, tables []string, executed bool) error {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return err
	}
	defer func() {
		_ = database.CloseDatabase(dbCtx)
	}()

	id, err := usecase.NewHistory(dbCtx).RecordTruncate(ctx, source, tables, executed)
	if err != nil {
		return err
	}
	slog.Info("recorded run", "id", id)
	return nil
}
