// Package ingestion turns submitted links and files into bounded, prompt-ready source text.
package ingestion

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/swzro/builders/internal/types"
)

const (
	// MaxItemChars is the per-source character limit.
	MaxItemChars = 3000
	// MaxCombinedChars is the limit on the combined source block sent to the model.
	MaxCombinedChars = 8000
	// TruncationMarker ends a combined source block that was cut short.
	TruncationMarker = "...(content truncated)"
)

var (
	multiSpace      = regexp.MustCompile(`[ \t\f\v]+`)
	excessiveBlanks = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = excessiveBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")

	// Markdown headings keep their content verbatim
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	// Bullets and indented lines keep their indentation
	indent := len(line) - len(trimmed)
	content := multiSpace.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// Truncate cuts text to at most limit characters (runes).
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}

func sourceLabel(kind types.SourceKind) string {
	if kind == types.SourceFile {
		return "File"
	}
	return "Link"
}

// CombineForPrompt renders items as one labeled source block of at most MaxCombinedChars characters.
// When the block is cut, it ends with TruncationMarker; the marker counts toward the limit.
func CombineForPrompt(items []types.SourceItem) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s %d] %s (type: %s)\n", sourceLabel(item.Kind), i+1, item.Provenance, item.DetectedType)
		sb.WriteString(Truncate(item.Text, MaxItemChars))
	}
	return capCombined(sb.String(), MaxCombinedChars)
}

func capCombined(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	keep := limit - utf8.RuneCountInString(TruncationMarker)
	return Truncate(text, keep) + TruncationMarker
}
