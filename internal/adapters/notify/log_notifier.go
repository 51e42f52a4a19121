package notify

import (
	"context"

	"github.com/mikey/keyword-tagger/internal/core"
	"go.uber.org/zap"
)

// LogNotifier writes the run summary to the log only
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the summary
func (n *LogNotifier) Notify(_ context.Context, summary *core.RunSummary) error {
	n.logger.Info("Run finished",
		zap.String("run_id", summary.RunID),
		zap.String("model", summary.Model),
		zap.Duration("duration", summary.Duration()),
		zap.Bool("aborted", summary.Aborted),
		zap.Int("keyword_sets", summary.KeywordSets),
		zap.Int("rows_annotated", summary.RowsProcessed),
		zap.Int("rows_skipped", summary.RowsSkipped),
		zap.Int("rows_failed", summary.RowsFailed),
		zap.Int("sheets_written", summary.SheetsWritten),
		zap.Int("sheets_failed", summary.SheetsFailed),
		zap.Int("files_skipped", summary.FilesSkipped))
	return nil
}
