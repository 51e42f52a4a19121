package workbook

import (
	"errors"

	"github.com/mikey/keyword-tagger/internal/core"
)

var (
	// ErrUnsupportedFormat is returned for files that are not workbooks
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	// ErrReadOnlyFormat is returned when an engine cannot write a format
	ErrReadOnlyFormat = errors.New("workbook format is read-only")
	// ErrSheetNotFound is returned when a named sheet does not exist
	ErrSheetNotFound = errors.New("sheet not found")
)

// engine reads and writes one family of workbook files
type engine interface {
	Name() string
	ReadWorkbook(path string) ([]core.Sheet, error)
	WriteSheet(path, sheet string, table *core.Table) error
}

// tableFromRows splits raw rows into header and data rows
func tableFromRows(rows [][]string) *core.Table {
	table := &core.Table{Rows: [][]string{}}
	if len(rows) == 0 {
		return table
	}
	table.Header = rows[0]
	for _, row := range rows[1:] {
		copied := make([]string, len(row))
		copy(copied, row)
		table.Rows = append(table.Rows, copied)
	}
	return table
}
