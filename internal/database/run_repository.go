package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/choplin/dbhelpers/internal/database/sqlc"
)

type RunRepository struct {
	ctx *Context
}

func NewRunRepository(dbCtx *Context) *RunRepository {
	return &RunRepository{ctx: dbCtx}
}

func (r *RunRepository) Create(ctx context.Context, record RunRecord) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("run repository: missing database context")
	}

	res, err := queries.InsertRun(ctx, sqldb.InsertRunParams{
		Kind:           string(record.Kind),
		Source:         record.Source,
		OutputPath:     nullString(record.OutputPath),
		StatementCount: record.StatementCount,
		Hash:           record.Hash,
		SnapshotPath:   record.SnapshotPath,
		Repository:     nullString(record.Repository),
		Executed:       boolToInt64(record.Executed),
	})
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *RunRepository) FindByID(ctx context.Context, id int64) (*RunRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("run repository: missing database context")
	}

	row, err := queries.FindRunByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record := mapRunRow(row)
	return &record, nil
}

// List returns runs newest first. An empty kind matches every kind and a
// non-positive limit means no limit.
func (r *RunRepository) List(ctx context.Context, kind RunKind, limit int) ([]RunRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("run repository: missing database context")
	}

	sqlLimit := int64(limit)
	if limit <= 0 {
		sqlLimit = -1
	}

	rows, err := queries.ListRuns(ctx, sqldb.ListRunsParams{Kind: string(kind), Limit: sqlLimit})
	if err != nil {
		return nil, err
	}

	result := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapRunRow(row))
	}
	return result, nil
}

func mapRunRow(row sqldb.Run) RunRecord {
	return RunRecord{
		ID:             row.ID,
		Kind:           RunKind(row.Kind),
		Source:         row.Source,
		OutputPath:     optionalString(row.OutputPath),
		StatementCount: row.StatementCount,
		Hash:           row.Hash,
		SnapshotPath:   row.SnapshotPath,
		Repository:     optionalString(row.Repository),
		Executed:       row.Executed != 0,
		CreatedAt:      optionalTime(row.CreatedAt),
	}
}
