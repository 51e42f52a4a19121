package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// KeywordSet is the controlled vocabulary loaded from one named sheet
type KeywordSet struct {
	Name     string
	Keywords []string
}

// Sheet is a named table read from a workbook
type Sheet struct {
	Name  string
	Table *Table
}

// Table is the in-memory copy of a sheet; the first sheet row is the header
type Table struct {
	Header []string
	Rows   [][]string

	edits map[CellRef]struct{}
}

// CellRef addresses a table cell. Row -1 is the header.
type CellRef struct {
	Row int
	Col int
}

// Cell returns the value at row/col or "" when the row is shorter
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// SetCell writes a value, padding the row with empty cells as needed
func (t *Table) SetCell(row, col int, value string) {
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
	t.markEdited(row, col)
}

// EnsureColumn gives column col a header when its header cell is empty,
// creating the column if no row reaches it, and reports true. A named
// column is left as it is. Cells never move between columns.
func (t *Table) EnsureColumn(col int, header string) bool {
	if col < len(t.Header) && t.Header[col] != "" {
		return false
	}
	for len(t.Header) <= col {
		t.Header = append(t.Header, "")
	}
	t.Header[col] = header
	t.markEdited(-1, col)
	return true
}

// Edits lists the cells written since the table was read, in row then column order
func (t *Table) Edits() []CellRef {
	refs := make([]CellRef, 0, len(t.edits))
	for ref := range t.edits {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}

// Value returns the content of ref
func (t *Table) Value(ref CellRef) string {
	if ref.Row < 0 {
		if ref.Col < len(t.Header) {
			return t.Header[ref.Col]
		}
		return ""
	}
	return t.Cell(ref.Row, ref.Col)
}

func (t *Table) markEdited(row, col int) {
	if t.edits == nil {
		t.edits = make(map[CellRef]struct{})
	}
	t.edits[CellRef{Row: row, Col: col}] = struct{}{}
}

// InputRow is one subject text addressed by file, sheet and row index
type InputRow struct {
	File   string
	Sheet  string
	Index  int
	Text   string
	Result *string
}

// IsBlank reports whether the subject text is empty or whitespace only
func (r *InputRow) IsBlank() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Verdict is the structured outcome of checking one text against one keyword set
type Verdict struct {
	ContainsKeywords bool     `json:"contains_keywords"`
	Reasoning        string   `json:"reasoning"`
	MatchedKeywords  []string `json:"matched_keywords"`
}

// Format renders the verdict as the string persisted to the result cell
func (v Verdict) Format() string {
	if v.ContainsKeywords {
		return fmt.Sprintf("contains keywords: %s. %s", strings.Join(v.MatchedKeywords, ", "), v.Reasoning)
	}
	return fmt.Sprintf("does not contain keywords. %s", v.Reasoning)
}

// UnmatchedKeywords returns matched keywords that are not part of keywords
func (v Verdict) UnmatchedKeywords(keywords []string) []string {
	known := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		known[k] = struct{}{}
	}
	var extra []string
	for _, m := range v.MatchedKeywords {
		if _, ok := known[m]; !ok {
			extra = append(extra, m)
		}
	}
	return extra
}

// ErrorMarker is written to a row whose pipeline failed
func ErrorMarker(err error) string {
	return fmt.Sprintf("processing error: %v", err)
}

// CheckResult is a verdict together with how it was obtained
type CheckResult struct {
	Verdict     Verdict
	RawResponse string
	ModelUsed   string
	FromCache   bool
	CheckedAt   time.Time
}

// CacheEntry is a stored verdict keyed by model, keyword set and text
type CacheEntry struct {
	Key       string
	Verdict   Verdict
	ModelUsed string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RunSummary counts what a batch run did
type RunSummary struct {
	RunID           string
	Model           string
	StartedAt       time.Time
	FinishedAt      time.Time
	KeywordSets     int
	RowsProcessed   int
	RowsSkipped     int
	RowsFailed      int
	SheetsWritten   int
	SheetsFailed    int
	FilesSkipped    int
	Aborted         bool
	FailureMessages []string
}

// Duration returns how long the run took
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
