package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"AI", `say "hi"`}, "The subject text.")

	assert.Contains(t, prompt, `["AI", "say \"hi\""]`)
	assert.Contains(t, prompt, "Input text\nThe subject text.\n")
	assert.Contains(t, prompt, `"contains_keywords": <boolean>`)
	assert.True(t, strings.HasSuffix(prompt, "```\n"))
}

func TestBuildPromptKeepsKeywordOrder(t *testing.T) {
	prompt := BuildPrompt([]string{"商业秘密", "保密协议"}, "文本")
	assert.Contains(t, prompt, `["商业秘密", "保密协议"]`)
}

func TestBuildPromptEmptyList(t *testing.T) {
	assert.Contains(t, BuildPrompt(nil, "x"), "list: []")
}
