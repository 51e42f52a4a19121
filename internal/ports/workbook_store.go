package ports

import (
	"github.com/mikey/keyword-tagger/internal/core"
)

// WorkbookStore defines the tabular file operations the pipeline needs
type WorkbookStore interface {
	// ListWorkbooks returns the workbook files in dir in a stable order
	ListWorkbooks(dir string) ([]string, error)

	// ReadWorkbook reads every sheet of a workbook into memory
	ReadWorkbook(path string) ([]core.Sheet, error)

	// WriteSheet replaces one sheet of an existing workbook, leaving other sheets untouched
	WriteSheet(path, sheet string, table *core.Table) error
}

// KeywordLoader defines how keyword sets are obtained for a run
type KeywordLoader interface {
	// Load returns the keyword sets found under dir, in a stable order
	Load(dir string) ([]core.KeywordSet, error)
}
