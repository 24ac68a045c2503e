package sqldb

import "database/sql"

type Run struct {
	ID             int64
	Kind           string
	Source         string
	OutputPath     sql.NullString
	StatementCount int64
	Hash           string
	SnapshotPath   string
	Repository     sql.NullString
	Executed       int64
	CreatedAt      sql.NullTime
}
