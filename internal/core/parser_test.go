package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Verdict
	}{
		{
			name: "fenced json",
			raw: "```json\n{\n\"contains_keywords\": true,\n\"reasoning\": \"paragraph 1 mentions 'AI'\",\n" +
				"\"matched_keywords\": [\"AI\"]\n}\n```",
			want: Verdict{ContainsKeywords: true, Reasoning: "paragraph 1 mentions 'AI'", MatchedKeywords: []string{"AI"}},
		},
		{
			name: "json surrounded by prose",
			raw: "Here is my answer: {\"contains_keywords\": false, \"reasoning\": \"nothing relevant\", " +
				"\"matched_keywords\": []} Hope this helps.",
			want: Verdict{ContainsKeywords: false, Reasoning: "nothing relevant", MatchedKeywords: []string{}},
		},
		{
			name: "null reasoning falls back to default",
			raw:  `{"contains_keywords": true, "reasoning": null, "matched_keywords": ["AI"]}`,
			want: Verdict{ContainsKeywords: true, Reasoning: DefaultReasoning, MatchedKeywords: []string{"AI"}},
		},
		{
			name: "single quotes and trailing comma",
			raw:  `{"contains_keywords": true, "reasoning": "mentions both", "matched_keywords": ['AI', "ML",]}`,
			want: Verdict{ContainsKeywords: true, Reasoning: "mentions both", MatchedKeywords: []string{"AI", "ML"}},
		},
		{
			name: "capitalised boolean",
			raw:  `{"contains_keywords": True, "reasoning": "sentence 2", "matched_keywords": ["AI"]}`,
			want: Verdict{ContainsKeywords: true, Reasoning: "sentence 2", MatchedKeywords: []string{"AI"}},
		},
		{
			name: "missing matched list",
			raw:  `{"contains_keywords": false, "reasoning": "no match"`,
			want: Verdict{ContainsKeywords: false, Reasoning: "no match", MatchedKeywords: []string{}},
		},
		{
			name: "list spanning lines",
			raw:  "\"contains_keywords\": true\n\"reasoning\": \"ok\"\n\"matched_keywords\": [\n  \"AI\",\n  \"ML\"\n]",
			want: Verdict{ContainsKeywords: true, Reasoning: "ok", MatchedKeywords: []string{"AI", "ML"}},
		},
		{
			name: "stray brace before the object",
			raw: "Thinking {step one} done.\n```json\n{\"contains_keywords\": true, \"reasoning\": \"found\", " +
				"\"matched_keywords\": [\"AI\"]}\n```",
			want: Verdict{ContainsKeywords: true, Reasoning: "found", MatchedKeywords: []string{"AI"}},
		},
		{
			name: "fields out of order with escaped quotes",
			raw:  `{"reasoning": "sentence 2 says \"AI\" here", "contains_keywords": true, "matched_keywords": ["AI"]}`,
			want: Verdict{ContainsKeywords: true, Reasoning: `sentence 2 says "AI" here`, MatchedKeywords: []string{"AI"}},
		},
		{
			name: "fields out of order inside prose",
			raw: "Result:\n```json\n{\"matched_keywords\": [], \"reasoning\": \"the \\\"ML\\\" team is a name\", " +
				"\"contains_keywords\": false}\n```",
			want: Verdict{ContainsKeywords: false, Reasoning: `the "ML" team is a name`, MatchedKeywords: []string{}},
		},
		{
			name: "unrelated object",
			raw:  `{"answer": 42}`,
			want: Verdict{ContainsKeywords: false, Reasoning: DefaultReasoning, MatchedKeywords: []string{}},
		},
		{
			name: "empty response",
			raw:  "",
			want: Verdict{ContainsKeywords: false, Reasoning: DefaultReasoning, MatchedKeywords: []string{}},
		},
		{
			name: "unrelated text",
			raw:  "I cannot help with that.",
			want: Verdict{ContainsKeywords: false, Reasoning: DefaultReasoning, MatchedKeywords: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVerdict(tt.raw))
		})
	}
}

func TestParseVerdictNeverReturnsNilList(t *testing.T) {
	inputs := []string{
		"",
		"{",
		`"matched_keywords": [`,
		`{"contains_keywords": true, "reasoning": "x", "matched_keywords": null}`,
		`"matched_keywords": [ , ]`,
	}
	for _, raw := range inputs {
		v := ParseVerdict(raw)
		assert.NotNil(t, v.MatchedKeywords, "input %q", raw)
		assert.NotEmpty(t, v.Reasoning, "input %q", raw)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, splitList("  "))
	assert.Equal(t, []string{"a", "b c"}, splitList(` "a" , 'b c' ,, `))
}

func TestParseVerdictIsIdempotent(t *testing.T) {
	verdicts := []Verdict{
		{ContainsKeywords: true, Reasoning: "第2段提到 \"AI\" <model>", MatchedKeywords: []string{"AI", "机器学习"}},
		{ContainsKeywords: false, Reasoning: DefaultReasoning, MatchedKeywords: []string{}},
	}
	for _, v := range verdicts {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		parsed := ParseVerdict(string(data))
		assert.Equal(t, v, parsed)

		again, err := json.Marshal(parsed)
		require.NoError(t, err)
		assert.Equal(t, parsed, ParseVerdict(string(again)))
	}
}

func TestSynonymScenario(t *testing.T) {
	keywords := []string{"AI", "机器学习"}
	text := "这段文本讨论了人工智能的发展"

	prompt := BuildPrompt(keywords, text)
	assert.Contains(t, prompt, "AI")
	assert.Contains(t, prompt, "机器学习")
	assert.Contains(t, prompt, text)

	raw := `{"contains_keywords": true, "reasoning": "文本提及'人工智能'，与'AI'相近", "matched_keywords": ["AI"]}`
	v := ParseVerdict(raw)
	assert.Equal(t, Verdict{ContainsKeywords: true, Reasoning: "文本提及'人工智能'，与'AI'相近", MatchedKeywords: []string{"AI"}}, v)
	assert.Equal(t, "contains keywords: AI. 文本提及'人工智能'，与'AI'相近", v.Format())
}
