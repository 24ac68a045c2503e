// Package truncate generates the statements that empty the exercise tables.
package truncate

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
)

const (
	disableForeignKeyChecks = "set foreign_key_checks = 0;"
	enableForeignKeyChecks  = "set foreign_key_checks = 1;"
)

// tableList is the exercise schema, one table per line.
const tableList = `
author
authorship
book
book_copy
counter_event
customer
employee
journal
journal_article
journal_issue
keyword
kwd_synonym
loan
loan_process
publisher
reservation
shelf
subject_area
text_kwd
textx
`

// DefaultTables returns the exercise tables in truncation order.
func DefaultTables() []string {
	return ParseTables(tableList)
}

// ParseTables splits a newline separated list, trimming names and dropping blank lines.
func ParseTables(raw string) []string {
	var tables []string
	for _, line := range strings.Split(raw, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		tables = append(tables, name)
	}
	return tables
}

// Statements returns the full script for tables, with foreign key checks
// disabled around the truncates.
func Statements(tables []string) []string {
	stmts := make([]string, 0, len(tables)+2)
	stmts = append(stmts, disableForeignKeyChecks)
	for _, table := range tables {
		name := strings.TrimSpace(table)
		if name == "" {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("truncate table %s;", name))
	}
	return append(stmts, enableForeignKeyChecks)
}

// Write prints the script for tables to w, one statement per line.
func Write(w io.Writer, tables []string) error {
	bw := bufio.NewWriter(w)
	for _, stmt := range Statements(tables) {
		if _, err := bw.WriteString(stmt + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Execer is satisfied by *sql.Conn and *sql.Tx. foreign_key_checks is a session
// variable, so a pooled *sql.DB must not be used.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply runs the script on a single session and returns the number of tables
// truncated. It stops at the first failing truncate but still tries to
// re-enable foreign key checks.
func Apply(ctx context.Context, conn Execer, tables []string) (int, error) {
	stmts := Statements(tables)

	if _, err := conn.ExecContext(ctx, stmts[0]); err != nil {
		return 0, fmt.Errorf("failed to disable foreign key checks: %w", err)
	}

	count := 0
	var applyErr error
	for _, stmt := range stmts[1 : len(stmts)-1] {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			applyErr = fmt.Errorf("failed to execute %q: %w", stmt, err)
			break
		}
		count++
	}

	if _, err := conn.ExecContext(ctx, stmts[len(stmts)-1]); err != nil {
		if applyErr != nil {
			return count, fmt.Errorf("%w (re-enable foreign key checks: %w)", applyErr, err)
		}
		return count, fmt.Errorf("failed to re-enable foreign key checks: %w", err)
	}

	return count, applyErr
}
