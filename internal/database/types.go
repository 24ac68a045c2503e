package database

import "time"

// RunKind names the helper that produced a run.
type RunKind string

const (
	RunExtract  RunKind = "extract"
	RunTruncate RunKind = "truncate"
)

// RunRecord represents a row in the runs table. Each run points at the
// snapshot of the script it produced.
type RunRecord struct {
	ID             int64
	Kind           RunKind
	Source         string
	OutputPath     string
	StatementCount int64
	Hash           string
	SnapshotPath   string
	Repository     string
	Executed       bool
	CreatedAt      time.Time
}
