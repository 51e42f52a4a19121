package core

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

const (
	fieldContainsKeywords = `"contains_keywords"`
	fieldReasoning        = `"reasoning"`
	fieldMatchedKeywords  = `"matched_keywords"`

	// DefaultReasoning is used when no reasoning could be recovered
	DefaultReasoning = "reasoning not extracted"
)

// verdictObjectPattern finds the shortest {...} span holding all three fields in order
var verdictObjectPattern = regexp.MustCompile(`(?s)\{.*?"contains_keywords".*?"reasoning".*?"matched_keywords".*?\}`)

// rawVerdict tells absent members apart from zero values
type rawVerdict struct {
	ContainsKeywords *bool    `json:"contains_keywords"`
	Reasoning        *string  `json:"reasoning"`
	MatchedKeywords  []string `json:"matched_keywords"`
}

// ParseVerdict recovers a verdict from a model response. It never fails: when
// no embedded object decodes as JSON each field is scanned for on its own
// and missing fields fall back to their defaults.
func ParseVerdict(raw string) Verdict {
	for _, candidate := range candidates(raw) {
		var rv rawVerdict
		if err := json.Unmarshal([]byte(candidate), &rv); err == nil && !rv.empty() {
			return rv.verdict()
		}
	}
	return scanVerdict(raw)
}

// candidates lists the spans tried as strict JSON, in order: the whole
// response, the shortest object holding the three fields in order, and
// everything between the first '{' and the last '}'.
func candidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	spans := []string{trimmed}
	if match := verdictObjectPattern.FindString(trimmed); match != "" {
		spans = append(spans, match)
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		spans = append(spans, trimmed[start:end+1])
	}
	return spans
}

func (rv rawVerdict) empty() bool {
	return rv.ContainsKeywords == nil && rv.Reasoning == nil && rv.MatchedKeywords == nil
}

func (rv rawVerdict) verdict() Verdict {
	v := Verdict{
		Reasoning:       DefaultReasoning,
		MatchedKeywords: []string{},
	}
	if rv.ContainsKeywords != nil {
		v.ContainsKeywords = *rv.ContainsKeywords
	}
	if rv.Reasoning != nil {
		v.Reasoning = *rv.Reasoning
	}
	if rv.MatchedKeywords != nil {
		v.MatchedKeywords = rv.MatchedKeywords
	}
	return v
}

// scanVerdict extracts each field independently.
func scanVerdict(raw string) Verdict {
	v := Verdict{
		Reasoning:       DefaultReasoning,
		MatchedKeywords: []string{},
	}
	if b, ok := scanBool(raw, fieldContainsKeywords); ok {
		v.ContainsKeywords = b
	}
	// Escaped quotes inside the reasoning string end the value early.
	if s, ok := scanString(raw, fieldReasoning); ok {
		v.Reasoning = s
	}
	if list, ok := scanList(raw, fieldMatchedKeywords); ok {
		v.MatchedKeywords = splitList(list)
	}
	return v
}

// valueAfter yields, for each occurrence of name followed by optional space
// and a colon, the text after the colon with leading space removed.
func valueAfter(raw, name string, fn func(rest string) bool) {
	for offset := 0; offset < len(raw); {
		i := strings.Index(raw[offset:], name)
		if i < 0 {
			return
		}
		rest := strings.TrimLeftFunc(raw[offset+i+len(name):], unicode.IsSpace)
		if strings.HasPrefix(rest, ":") {
			if fn(strings.TrimLeftFunc(rest[1:], unicode.IsSpace)) {
				return
			}
		}
		offset += i + len(name)
	}
}

func scanBool(raw, name string) (value, found bool) {
	valueAfter(raw, name, func(rest string) bool {
		switch {
		case hasPrefixFold(rest, "true"):
			value, found = true, true
		case hasPrefixFold(rest, "false"):
			value, found = false, true
		}
		return found
	})
	return value, found
}

func scanString(raw, name string) (value string, found bool) {
	valueAfter(raw, name, func(rest string) bool {
		if !strings.HasPrefix(rest, `"`) {
			return false
		}
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return false
		}
		value, found = rest[1:1+end], true
		return true
	})
	return value, found
}

func scanList(raw, name string) (value string, found bool) {
	valueAfter(raw, name, func(rest string) bool {
		if !strings.HasPrefix(rest, "[") {
			return false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return false
		}
		value, found = rest[1:end], true
		return true
	})
	return value, found
}

// splitList splits a bracket body on commas and strips quotes and space
func splitList(body string) []string {
	items := []string{}
	if strings.TrimSpace(body) == "" {
		return items
	}
	for _, part := range strings.Split(body, ",") {
		item := strings.Trim(strings.TrimSpace(part), `"'`)
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
