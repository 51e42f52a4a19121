package workbook

import (
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/utils"
	"go.uber.org/zap"
)

// KeywordLoader builds keyword sets from a directory of vocabulary workbooks.
// Each sheet name is one set; its entries come from one column of every file.
type KeywordLoader struct {
	store         *Store
	textProcessor *utils.TextProcessor
	column        int
	logger        *zap.Logger
}

// NewKeywordLoader creates a loader reading the given zero-based column
func NewKeywordLoader(store *Store, textProcessor *utils.TextProcessor, column int, logger *zap.Logger) *KeywordLoader {
	return &KeywordLoader{
		store:         store,
		textProcessor: textProcessor,
		column:        column,
		logger:        logger,
	}
}

// Load returns keyword sets ordered by the first appearance of each sheet name.
// Duplicates are kept. Unreadable files are logged and skipped.
func (l *KeywordLoader) Load(dir string) ([]core.KeywordSet, error) {
	paths, err := ListWorkbooks(dir)
	if err != nil {
		return nil, err
	}

	var sets []core.KeywordSet
	index := make(map[string]int)
	for _, path := range paths {
		sheets, err := l.store.ReadWorkbook(path)
		if err != nil {
			l.logger.Error("Skipping keyword workbook", zap.String("file", path), zap.Error(err))
			continue
		}

		for _, sheet := range sheets {
			i, ok := index[sheet.Name]
			if !ok {
				i = len(sets)
				index[sheet.Name] = i
				sets = append(sets, core.KeywordSet{Name: sheet.Name, Keywords: []string{}})
			}
			for row := range sheet.Table.Rows {
				keyword := l.textProcessor.NormalizeKeyword(sheet.Table.Cell(row, l.column))
				if keyword == "" {
					continue
				}
				sets[i].Keywords = append(sets[i].Keywords, keyword)
			}
		}

		l.logger.Debug("Loaded keyword workbook", zap.String("file", path), zap.Int("sheets", len(sheets)))
	}

	return sets, nil
}
