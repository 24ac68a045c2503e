package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/choplin/dbhelpers/internal/database"
	"github.com/choplin/dbhelpers/internal/filesystem"
	"github.com/choplin/dbhelpers/internal/git"
	"github.com/choplin/dbhelpers/internal/transcript"
	"github.com/choplin/dbhelpers/internal/truncate"
)

const (
	// BuiltinSource names the source of scripts generated from the compiled-in table list.
	BuiltinSource = "builtin"
	// MCPSource names the source of scripts built from a table list passed over MCP.
	MCPSource = "mcp"
)

// History records runs in the index and snapshots their scripts.
type History struct {
	runs *database.RunRepository
	db   *database.Context
}

func NewHistory(dbCtx *database.Context) *History {
	return &History{
		runs: database.NewRunRepository(dbCtx),
		db:   dbCtx,
	}
}

// RecordExtract snapshots the extracted script and stores a run for it.
func (h *History) RecordExtract(ctx context.Context, res transcript.Result) (int64, error) {
	content, err := filesystem.ReadFile(res.OutputPath)
	if err != nil {
		return 0, err
	}

	source, err := filepath.Abs(res.InputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve transcript path: %w", err)
	}
	output, err := filepath.Abs(res.OutputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve output path: %w", err)
	}

	return h.record(ctx, database.RunRecord{
		Kind:           database.RunExtract,
		Source:         source,
		OutputPath:     output,
		StatementCount: int64(res.Statements),
		Repository:     git.RepoRootForFile(source),
	}, content)
}

// RecordTruncate snapshots the truncate script for tables. source is the
// tables file, BuiltinSource for the compiled-in list or MCPSource for a list
// passed by an MCP client.
func (h *History) RecordTruncate(ctx context.Context, source string, tables []string, executed bool) (int64, error) {
	var buf bytes.Buffer
	if err := truncate.Write(&buf, tables); err != nil {
		return 0, err
	}

	record := database.RunRecord{
		Kind:           database.RunTruncate,
		Source:         source,
		StatementCount: int64(len(truncate.Statements(tables))),
		Executed:       executed,
	}
	if source != BuiltinSource && source != MCPSource {
		abs, err := filepath.Abs(source)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve tables file path: %w", err)
		}
		record.Source = abs
		record.Repository = git.RepoRootForFile(abs)
	}

	return h.record(ctx, record, buf.String())
}

func (h *History) record(ctx context.Context, record database.RunRecord, content string) (int64, error) {
	path, hash, err := filesystem.SaveSnapshot(record.Source, content)
	if err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}
	record.SnapshotPath = path
	record.Hash = hash

	id, err := h.runs.Create(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	slog.Debug("recorded run", "id", id, "kind", record.Kind, "snapshot", path)
	return id, nil
}

// List returns recorded runs newest first.
func (h *History) List(ctx context.Context, kind database.RunKind, limit int) ([]database.RunRecord, error) {
	switch kind {
	case "", database.RunExtract, database.RunTruncate:
	default:
		return nil, fmt.Errorf("invalid kind: %s (valid values: extract, truncate)", kind)
	}
	return h.runs.List(ctx, kind, limit)
}

// ShowResult is a recorded run together with its verified script.
type ShowResult struct {
	Record  database.RunRecord
	Content string
}

// Show loads a run and its snapshot, failing if the snapshot no longer matches
// the recorded hash.
func (h *History) Show(ctx context.Context, id int64) (*ShowResult, error) {
	record, err := h.runs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := filesystem.VerifyFile(record.SnapshotPath, record.Hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("file integrity check failed for run %d", id)
	}

	content, err := filesystem.ReadFile(record.SnapshotPath)
	if err != nil {
		return nil, err
	}

	return &ShowResult{Record: *record, Content: content}, nil
}

// Clear deletes every run and snapshot, returning the number of runs removed.
func (h *History) Clear(ctx context.Context) (int64, error) {
	count, err := database.ClearDatabase(ctx, h.db)
	if err != nil {
		return 0, err
	}
	if err := filesystem.DeleteAllSnapshots(); err != nil {
		return count, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return count, nil
}
