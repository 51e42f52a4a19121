package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/metrics"
	"github.com/mikey/keyword-tagger/internal/ports"
	"github.com/mikey/keyword-tagger/internal/sheetfilter"
	"go.uber.org/zap"
)

// maxFailureMessages bounds the failures kept in a run summary
const maxFailureMessages = 50

// Checker produces a verdict for one text against one keyword list
type Checker interface {
	Check(ctx context.Context, keywords []string, text string) (*core.CheckResult, error)
	Model() string
}

// Driver walks keyword sets, input workbooks, sheets and rows, writing one
// verdict per non-blank row and saving each sheet once all its rows are done.
type Driver struct {
	checker       Checker
	store         ports.WorkbookStore
	loader        ports.KeywordLoader
	keywordFilter *sheetfilter.Checker
	inputFilter   *sheetfilter.Checker
	recorder      *metrics.Recorder
	cfg           config.PipelineConfig
	logger        *zap.Logger
}

// NewDriver creates a new pipeline driver
func NewDriver(
	checker Checker,
	store ports.WorkbookStore,
	loader ports.KeywordLoader,
	recorder *metrics.Recorder,
	cfg config.PipelineConfig,
	logger *zap.Logger,
) *Driver {
	return &Driver{
		checker:       checker,
		store:         store,
		loader:        loader,
		keywordFilter: sheetfilter.NewChecker(cfg.KeywordSheets, "keyword_sheets", logger),
		inputFilter:   sheetfilter.NewChecker(cfg.InputSheets, "input_sheets", logger),
		recorder:      recorder,
		cfg:           cfg,
		logger:        logger,
	}
}

// inputWorkbook is an input file held in memory for the whole run
type inputWorkbook struct {
	path   string
	sheets []core.Sheet
}

// Run processes every selected keyword set. Configuration errors abort the
// run before any row is touched; everything after that is handled per file,
// sheet or row. A cancelled context stops the run before the next row and
// the sheet in progress is not written.
func (d *Driver) Run(ctx context.Context) (*core.RunSummary, error) {
	summary := &core.RunSummary{
		RunID:     uuid.NewString(),
		Model:     d.checker.Model(),
		StartedAt: time.Now(),
	}
	defer func() {
		summary.FinishedAt = time.Now()
		d.recorder.Finish(summary.FinishedAt)
	}()

	sets, err := d.loader.Load(d.cfg.DataDir)
	if err != nil {
		return summary, fmt.Errorf("failed to load keyword sets: %w", err)
	}

	inputs, err := d.loadInputs(summary)
	if err != nil {
		return summary, err
	}

	d.logger.Info("Starting run",
		zap.String("run_id", summary.RunID),
		zap.String("model", summary.Model),
		zap.Int("keyword_sets", len(sets)),
		zap.Int("input_files", len(inputs)))

	for _, set := range sets {
		if !d.keywordFilter.IsSelected(set.Name) {
			continue
		}
		if len(set.Keywords) == 0 {
			d.logger.Warn("Skipping empty keyword set", zap.String("keyword_set", set.Name))
			continue
		}
		summary.KeywordSets++

		d.logger.Info("Processing keyword set",
			zap.String("keyword_set", set.Name),
			zap.Strings("keywords", set.Keywords))

		for _, input := range inputs {
			for _, sheet := range input.sheets {
				if !d.inputFilter.IsSelected(sheet.Name) {
					continue
				}
				if err := d.processSheet(ctx, set, input.path, sheet, summary); err != nil {
					summary.Aborted = true
					return summary, err
				}
			}
		}
	}

	return summary, nil
}

func (d *Driver) loadInputs(summary *core.RunSummary) ([]inputWorkbook, error) {
	paths, err := d.store.ListWorkbooks(d.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input workbooks: %w", err)
	}

	var inputs []inputWorkbook
	for _, path := range paths {
		sheets, err := d.store.ReadWorkbook(path)
		if err != nil {
			d.logger.Error("Skipping input workbook", zap.String("file", path), zap.Error(err))
			summary.FilesSkipped++
			d.addFailure(summary, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		inputs = append(inputs, inputWorkbook{path: path, sheets: sheets})
	}
	return inputs, nil
}

// processSheet annotates every row of one sheet and writes the sheet back.
// It only returns an error when the context is cancelled.
func (d *Driver) processSheet(ctx context.Context, set core.KeywordSet, path string, sheet core.Sheet, summary *core.RunSummary) error {
	logger := d.logger.With(
		zap.String("keyword_set", set.Name),
		zap.String("file", filepath.Base(path)),
		zap.String("sheet", sheet.Name))
	logger.Info("Processing sheet", zap.Int("rows", len(sheet.Table.Rows)))

	table := sheet.Table
	resultCol := d.cfg.SubjectColumn + 1

	for i := range table.Rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run cancelled, sheet not written", zap.Int("row", i))
			return err
		}

		row := core.InputRow{
			File:  path,
			Sheet: sheet.Name,
			Index: i,
			Text:  table.Cell(i, d.cfg.SubjectColumn),
		}
		if row.IsBlank() {
			summary.RowsSkipped++
			d.recorder.Row(metrics.OutcomeSkipped)
			continue
		}

		result, err := d.annotate(ctx, set, &row)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("Run cancelled, sheet not written", zap.Int("row", i))
				return ctx.Err()
			}
			logger.Error("Row failed", zap.Int("row", i+2), zap.Error(err))
			summary.RowsFailed++
			d.recorder.Row(metrics.OutcomeFailed)
			d.addFailure(summary, fmt.Sprintf("%s/%s row %d: %v", filepath.Base(path), sheet.Name, i+2, err))
			result = core.ErrorMarker(err)
		} else {
			summary.RowsProcessed++
			d.recorder.Row(metrics.OutcomeAnnotated)
			logger.Debug("Row annotated", zap.Int("row", i+2), zap.String("result", result))
		}

		if table.EnsureColumn(resultCol, d.cfg.ResultHeader) {
			logger.Info("Named result column", zap.String("header", d.cfg.ResultHeader))
		}
		table.SetCell(i, resultCol, result)
		row.Result = &result
	}

	if err := d.store.WriteSheet(path, sheet.Name, table); err != nil {
		logger.Error("Failed to write sheet", zap.Error(err))
		summary.SheetsFailed++
		d.recorder.Sheet(false)
		d.addFailure(summary, fmt.Sprintf("%s/%s write: %v", filepath.Base(path), sheet.Name, err))
		return nil
	}

	summary.SheetsWritten++
	d.recorder.Sheet(true)
	logger.Info("Sheet written")
	return nil
}

// annotate runs the verdict pipeline for one row, retrying failed service
// calls up to the configured number of times.
func (d *Driver) annotate(ctx context.Context, set core.KeywordSet, row *core.InputRow) (formatted string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing row: %v", r)
		}
	}()

	var result *core.CheckResult
	operation := func() error {
		start := time.Now()
		res, err := d.checker.Check(ctx, set.Keywords, row.Text)
		if !(res != nil && res.FromCache) {
			d.recorder.ServiceCall(time.Since(start))
		}
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	if err := backoff.RetryNotify(operation, d.retryPolicy(ctx), func(err error, wait time.Duration) {
		d.logger.Warn("Retrying row",
			zap.String("sheet", row.Sheet),
			zap.Int("row", row.Index+2),
			zap.Duration("wait", wait),
			zap.Error(err))
	}); err != nil {
		return "", err
	}

	d.recorder.Verdict(set.Name, result.Verdict.ContainsKeywords, result.FromCache)
	return result.Verdict.Format(), nil
}

func (d *Driver) retryPolicy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if d.cfg.RetryInterval > 0 {
		exp.InitialInterval = d.cfg.RetryInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(d.cfg.MaxRetries)), ctx)
}

func (d *Driver) addFailure(summary *core.RunSummary, msg string) {
	if len(summary.FailureMessages) < maxFailureMessages {
		summary.FailureMessages = append(summary.FailureMessages, msg)
	}
}
