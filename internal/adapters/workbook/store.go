package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mikey/keyword-tagger/internal/core"
	"go.uber.org/zap"
)

// ErrMissingDirectory is returned when a workbook directory does not exist
var ErrMissingDirectory = errors.New("directory does not exist")

// Store reads and writes workbooks, choosing the engine by file extension
// and retrying a failed read once with the other engine.
type Store struct {
	xlsx   engine
	xls    engine
	logger *zap.Logger
}

// NewStore creates a new workbook store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		xlsx:   xlsxEngine{},
		xls:    xlsEngine{charset: "utf-8"},
		logger: logger,
	}
}

// IsWorkbook reports whether the file name has a supported extension
func IsWorkbook(name string) bool {
	if strings.HasPrefix(filepath.Base(name), "~$") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// ListWorkbooks returns the workbooks in dir sorted by name
func ListWorkbooks(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsWorkbook(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ListWorkbooks returns the workbooks in dir sorted by name
func (s *Store) ListWorkbooks(dir string) ([]string, error) {
	return ListWorkbooks(dir)
}

func (s *Store) engines(path string) (primary, secondary engine, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return s.xlsx, s.xls, nil
	case ".xls":
		return s.xls, s.xlsx, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadWorkbook reads every sheet of a workbook
func (s *Store) ReadWorkbook(path string) ([]core.Sheet, error) {
	primary, secondary, err := s.engines(path)
	if err != nil {
		return nil, err
	}

	sheets, err := primary.ReadWorkbook(path)
	if err == nil {
		return sheets, nil
	}

	s.logger.Warn("Primary engine failed, retrying with alternative engine",
		zap.String("file", path),
		zap.String("engine", primary.Name()),
		zap.String("alternative", secondary.Name()),
		zap.Error(err))

	sheets, altErr := secondary.ReadWorkbook(path)
	if altErr != nil {
		return nil, fmt.Errorf("failed to read %s with %s (%v) and %s: %w",
			path, primary.Name(), err, secondary.Name(), altErr)
	}
	return sheets, nil
}

// WriteSheet replaces the contents of one sheet in an existing workbook
func (s *Store) WriteSheet(path, sheet string, table *core.Table) error {
	primary, _, err := s.engines(path)
	if err != nil {
		return err
	}
	return primary.WriteSheet(path, sheet, table)
}
