package domain

import (
	"context"
	"errors"
	"fmt"
)

type RunRequest struct {
	FilePath  string
	WarmCache bool
	DryRun    bool
}

type Service interface {
	Run(context.Context, RunRequest) (RunSummary, error)
}

// RowSource yields the rows of a tabular input file.
type RowSource interface {
	Read(path string) (Table, error)
}

var (
	ErrFileUnreadable = errors.New("file_unreadable")
	ErrMissingColumn  = errors.New("missing_column")
	ErrMissingField   = errors.New("missing_field")
	ErrBadMonth       = errors.New("bad_month_format")
	ErrNoFile         = errors.New("missing_input_file")
)

// RowError records why a single row was skipped. Row is one-based to
// match how operators count lines in the file.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
