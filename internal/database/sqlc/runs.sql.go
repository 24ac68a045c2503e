package sqldb

import (
	"context"
	"database/sql"
)

const insertRun = `INSERT INTO runs (kind, source, output_path, statement_count, hash, snapshot_path, repository, executed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type InsertRunParams struct {
	Kind           string
	Source         string
	OutputPath     sql.NullString
	StatementCount int64
	Hash           string
	SnapshotPath   string
	Repository     sql.NullString
	Executed       int64
}

func (q *Queries) InsertRun(ctx context.Context, arg InsertRunParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertRun,
		arg.Kind,
		arg.Source,
		arg.OutputPath,
		arg.StatementCount,
		arg.Hash,
		arg.SnapshotPath,
		arg.Repository,
		arg.Executed,
	)
}

const findRunByID = `SELECT id, kind, source, output_path, statement_count, hash, snapshot_path, repository, executed, created_at
FROM runs WHERE id = ?`

func (q *Queries) FindRunByID(ctx context.Context, id int64) (Run, error) {
	row := q.db.QueryRowContext(ctx, findRunByID, id)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Source,
		&i.OutputPath,
		&i.StatementCount,
		&i.Hash,
		&i.SnapshotPath,
		&i.Repository,
		&i.Executed,
		&i.CreatedAt,
	)
	return i, err
}

const listRuns = `SELECT id, kind, source, output_path, statement_count, hash, snapshot_path, repository, executed, created_at
FROM runs
WHERE (?1 = '' OR kind = ?1)
ORDER BY id DESC
LIMIT ?2`

type ListRunsParams struct {
	Kind  string
	Limit int64
}

func (q *Queries) ListRuns(ctx context.Context, arg ListRunsParams) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, arg.Kind, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Run
	for rows.Next() {
		var i Run
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Source,
			&i.OutputPath,
			&i.StatementCount,
			&i.Hash,
			&i.SnapshotPath,
			&i.Repository,
			&i.Executed,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllRuns = `DELETE FROM runs`

func (q *Queries) DeleteAllRuns(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllRuns)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
