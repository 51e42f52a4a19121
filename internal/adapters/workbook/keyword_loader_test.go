package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestKeywordLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "a.xlsx"), []string{"AI", "Legal"}, map[string][][]string{
		"AI":    {{"id", "keyword"}, {"1", "ＡＩ"}, {"2", " machine learning "}, {"3", ""}, {"4", "AI"}},
		"Legal": {{"id", "keyword"}, {"1", "商业秘密"}},
	})
	writeWorkbook(t, filepath.Join(dir, "b.xlsx"), []string{"Legal", "Empty"}, map[string][][]string{
		"Legal": {{"id", "keyword"}, {"1", "保密协议"}},
		"Empty": {{"id", "keyword"}},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.xlsx"), []byte("broken"), 0o644))

	logger := zaptest.NewLogger(t)
	loader := NewKeywordLoader(NewStore(logger), utils.NewTextProcessor(logger), 1, logger)

	sets, err := loader.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []core.KeywordSet{
		{Name: "AI", Keywords: []string{"ＡＩ", "machine learning", "AI"}},
		{Name: "Legal", Keywords: []string{"商业秘密", "保密协议"}},
		{Name: "Empty", Keywords: []string{}},
	}, sets)
}

func TestKeywordLoaderMissingDirectory(t *testing.T) {
	logger := zaptest.NewLogger(t)
	loader := NewKeywordLoader(NewStore(logger), utils.NewTextProcessor(logger), 1, logger)

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrMissingDirectory)
}
