package workbook

import (
	"fmt"

	"github.com/extrame/xls"
	"github.com/mikey/keyword-tagger/internal/core"
)

// xlsEngine reads legacy BIFF workbooks (.xls). It cannot write them.
type xlsEngine struct {
	charset string
}

func (xlsEngine) Name() string { return "xls" }

func (e xlsEngine) ReadWorkbook(path string) (sheets []core.Sheet, err error) {
	// the BIFF decoder panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("failed to decode workbook: %v", r)
		}
	}()

	wb, err := xls.Open(path, e.charset)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, []string{})
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, core.Sheet{Name: ws.Name, Table: tableFromRows(rows)})
	}
	return sheets, nil
}

func (xlsEngine) WriteSheet(path, sheet string, _ *core.Table) error {
	return fmt.Errorf("%w: cannot write sheet %q to %s", ErrReadOnlyFormat, sheet, path)
}
