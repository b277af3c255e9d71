package snowplot

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors for the ways a page can fail to match the expected shape.
// Use errors.Is against these; a *ParseError always wraps exactly one.
var (
	ErrEmptyInput        = errors.New("empty or non-text document")
	ErrTableNotFound     = errors.New("SWE change table not found")
	ErrNoDataRow         = errors.New("SWE change table has no numeric data row")
	ErrInsufficientCells = errors.New("SWE change data row has fewer than 5 cells")
)

// ParseError reports a page that does not match the expected snow plot
// shape, with enough context to diagnose upstream format drift.
type ParseError struct {
	Kind error

	DocumentBytes int
	Tables        int // tables in the document
	Rows          int // rows in the selected table, when one was selected
	Cells         int // cells in the selected data row, when one was selected
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse snow plot: %s (bytes=%d tables=%d rows=%d cells=%d)",
		e.Kind, e.DocumentBytes, e.Tables, e.Rows, e.Cells)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// KindName returns a stable snake_case name for the error kind, suitable for
// metric labels.
func (e *ParseError) KindName() string {
	switch e.Kind {
	case ErrEmptyInput:
		return "empty_input"
	case ErrTableNotFound:
		return "table_not_found"
	case ErrNoDataRow:
		return "no_data_row"
	case ErrInsufficientCells:
		return "insufficient_cells"
	default:
		return "unknown"
	}
}

// LogValue renders the error as a structured group.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", e.KindName()),
		slog.String("message", e.Kind.Error()),
		slog.Int("document_bytes", e.DocumentBytes),
		slog.Int("tables", e.Tables),
		slog.Int("rows", e.Rows),
		slog.Int("cells", e.Cells),
	)
}

// KindOf returns the KindName of err if it is a *ParseError, or "" otherwise.
func KindOf(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.KindName()
	}
	return ""
}
