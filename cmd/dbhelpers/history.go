package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/choplin/dbhelpers/internal/database"
	"github.com/choplin/dbhelpers/internal/usecase"
)

func newHistoryCmd() *cobra.Command {
	var (
		kind   string
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHistory(func(h *usecase.History) error {
				runs, err := h.List(cmd.Context(), database.RunKind(kind), limit)
				if err != nil {
					return err
				}

				switch format {
				case "json":
					return outputJSON(cmd, runs)
				case "table":
					outputTable(cmd, runs)
					return nil
				default:
					return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
				}
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only show runs of this kind: extract or truncate")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the script recorded for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id: %s", args[0])
			}

			return withHistory(func(h *usecase.History) error {
				result, err := h.Show(cmd.Context(), id)
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("run not found: %d", id)
				}
				if err != nil {
					return err
				}

				_, err = fmt.Fprint(cmd.OutOrStdout(), result.Content)
				return err
			})
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs and snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				reader := bufio.NewReader(cmd.InOrStdin())
				fmt.Fprint(cmd.ErrOrStderr(), "Delete all recorded runs and snapshots? (y/N) ")
				answer, err := reader.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}

				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Clear cancelled")
					return nil
				}
			}

			return withHistory(func(h *usecase.History) error {
				count, err := h.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if count == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), "Deleted 1 run")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs\n", count)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func withHistory(fn func(h *usecase.History) error) error {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return err
	}
	defer func() {
		_ = database.CloseDatabase(dbCtx)
	}()

	return fn(usecase.NewHistory(dbCtx))
}

type historyOutputEntry struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	OutputPath string `json:"output_path,omitempty"`
	Statements int64  `json:"statements"`
	Hash       string `json:"hash"`
	Repository string `json:"repository,omitempty"`
	Executed   bool   `json:"executed,omitempty"`
	Created    string `json:"created"`
}

func outputJSON(cmd *cobra.Command, runs []database.RunRecord) error {
	output := make([]historyOutputEntry, 0, len(runs))

	for _, run := range runs {
		output = append(output, historyOutputEntry{
			ID:         run.ID,
			Kind:       string(run.Kind),
			Source:     run.Source,
			OutputPath: run.OutputPath,
			Statements: run.StatementCount,
			Hash:       run.Hash,
			Repository: run.Repository,
			Executed:   run.Executed,
			Created:    run.CreatedAt.Format(time.RFC3339),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

// sourceWidth is what remains for the Source column once the fixed columns
// (ID, Kind, Stmts, Exec, Created, Hash) and borders are accounted for.
func sourceWidth(termWidth int) int {
	const fixed = 6 + 8 + 5 + 4 + 19 + 12
	const borders = 7 * 3
	width := termWidth - fixed - borders
	if width < 20 {
		width = 20
	}
	return width
}

// truncateLeft keeps the end of a path, which is the part that identifies it.
func truncateLeft(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for i := range runes {
		tail := string(runes[i:])
		if runewidth.StringWidth(tail)+3 <= maxWidth {
			return "..." + tail
		}
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

func outputTable(cmd *cobra.Command, runs []database.RunRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	width := sourceWidth(getTerminalWidth())

	t.AppendHeader(table.Row{"ID", "Kind", "Source", "Stmts", "Exec", "Created", "Hash"})

	for _, run := range runs {
		executed := ""
		if run.Executed {
			executed = "yes"
		}
		t.AppendRow(table.Row{
			run.ID,
			string(run.Kind),
			truncateLeft(run.Source, width),
			run.StatementCount,
			executed,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortHash(run.Hash),
		})
	}

	t.Render()
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
