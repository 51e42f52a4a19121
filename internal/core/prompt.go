package core

import (
	"fmt"
	"strconv"
	"strings"
)

const promptFormat = `You are a strict keyword detector. Process the input according to the rules below.

Task
1. Analyse the input text and decide whether it mentions any term from this list: %s
2. When the text explicitly mentions a keyword from the list, it is present.
3. When the text uses an expression that is close to a keyword, decide from the context whether the keyword is present.
4. Return a strict JSON object with these fields:
- "contains_keywords": boolean
- "reasoning": the basis for the decision and where it was found. For an explicit mention, e.g. "paragraph 2 explicitly mentions 'AI'". For a close expression, name the keyword it is close to, e.g. "paragraph 2 mentions 'artificial intelligence', close to 'AI'"
- "matched_keywords": array containing only matched words from the list

Mandatory rules
- Never output terms that are not in the list.
- Always state the exact location (paragraph/sentence).

Input text
%s

You must return strict JSON only
` + "```json" + `
{
"contains_keywords": <boolean>,
"reasoning": "<reason for the decision>",
"matched_keywords": [<strictly matched words>]
}
` + "```\n"

// BuildPrompt renders the keyword detection instructions for one subject text
func BuildPrompt(keywords []string, text string) string {
	return fmt.Sprintf(promptFormat, formatKeywordList(keywords), text)
}

// formatKeywordList renders keywords as a bracketed list of quoted strings
func formatKeywordList(keywords []string) string {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = strconv.Quote(k)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
