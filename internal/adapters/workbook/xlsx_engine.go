package workbook

import (
	"fmt"

	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/xuri/excelize/v2"
)

// xlsxEngine handles Office Open XML workbooks (.xlsx, .xlsm)
type xlsxEngine struct{}

func (xlsxEngine) Name() string { return "excelize" }

func (xlsxEngine) ReadWorkbook(path string) ([]core.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []core.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, core.Sheet{Name: name, Table: tableFromRows(rows)})
	}
	return sheets, nil
}

// WriteSheet stores the cells edited in table and leaves every other cell,
// and every other sheet, as it was
func (xlsxEngine) WriteSheet(path, sheet string, table *core.Table) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	edits := table.Edits()
	if len(edits) == 0 {
		return nil
	}
	for _, ref := range edits {
		// row -1 is the header, which is sheet row 1
		cell, err := excelize.CoordinatesToCellName(ref.Col+1, ref.Row+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, table.Value(ref)); err != nil {
			return fmt.Errorf("failed to write cell %s of sheet %q: %w", cell, sheet, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
