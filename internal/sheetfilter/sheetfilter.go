package sheetfilter

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/width"
)

// Checker decides whether a sheet takes part in a run. An empty list selects every sheet.
type Checker struct {
	names  []string
	label  string
	logger *zap.Logger
}

// NewChecker creates a new sheet checker
func NewChecker(names []string, label string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			normalized = append(normalized, name)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sheet filter", zap.String("filter", label), zap.Strings("sheets", normalized))
	}

	return &Checker{
		names:  normalized,
		label:  label,
		logger: logger,
	}
}

// IsSelected checks whether the sheet name is on the list, ignoring case and
// character width, so "ＡＩ" on the command line selects the sheet "AI"
func (c *Checker) IsSelected(sheet string) bool {
	if len(c.names) == 0 {
		return true
	}

	name := width.Fold.String(strings.TrimSpace(sheet))
	for _, selected := range c.names {
		if strings.EqualFold(width.Fold.String(selected), name) {
			return true
		}
	}

	if c.logger != nil {
		c.logger.Debug("Sheet not selected", zap.String("filter", c.label), zap.String("sheet", sheet))
	}
	return false
}
