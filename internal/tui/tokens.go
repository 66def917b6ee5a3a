package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// estimateTokens returns approximate token count (~4 chars per token)
func estimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// getContextLimit returns the context window size for a model
func getContextLimit(model string) int {
	model = strings.ToLower(model)

	switch {
	case strings.Contains(model, "gemini"):
		return 1000000
	case strings.Contains(model, "claude"):
		return 200000
	case strings.Contains(model, "gpt-4o"), strings.Contains(model, "gpt-4.1"), strings.Contains(model, "gpt-4-turbo"):
		return 128000
	case strings.Contains(model, "llama-3"), strings.Contains(model, "llama3"):
		return 128000
	case strings.Contains(model, "mixtral"):
		return 32000
	}

	// Default fallback
	return 8000
}

// usageLine summarises how much of the model's context a prompt would use.
func usageLine(text, model string) string {
	used := estimateTokens(text)
	limit := getContextLimit(model)
	pct := float64(used) / float64(limit) * 100
	return fmt.Sprintf("~%d tokens  %.1fk/%.0fk ctx (%.1f%%)", used, float64(used)/1000, float64(limit)/1000, pct)
}

// wrapText wraps each paragraph of text to maxWidth, preserving words and
// blank lines.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 60
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= maxWidth {
			out = append(out, line)
			continue
		}

		var result strings.Builder
		lineLen := 0
		for i, word := range strings.Fields(line) {
			n := utf8.RuneCountInString(word)
			if i > 0 {
				if lineLen+1+n > maxWidth {
					result.WriteString("\n")
					lineLen = 0
				} else {
					result.WriteString(" ")
					lineLen++
				}
			}
			result.WriteString(word)
			lineLen += n
		}
		out = append(out, result.String())
	}

	return strings.Join(out, "\n")
}
