package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/swzro/builders/internal/types"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	input := "# Title\n## Subtitle\nContent here"
	result := CleanText(input)

	assert.Contains(t, result, "# Title")
	assert.Contains(t, result, "## Subtitle")
	assert.Contains(t, result, "Content here")
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n* Item 3"
	result := CleanText(input)

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "- Item 2")
	assert.Contains(t, result, "* Item 3")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	result := CleanText("Line    with \t  multiple    spaces")
	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	result := CleanText("Line 1\n\n\n\n\nLine 2")
	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	result := CleanText("Line 1\r\nLine 2\rLine 3\nLine 4")
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("  \n\t\n "))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"under limit", "abc", 5, "abc"},
		{"at limit", "abcde", 5, "abcde"},
		{"over limit", "abcdef", 5, "abcde"},
		{"multibyte runes", "가나다라", 2, "가나"},
		{"zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.text, tt.limit))
		})
	}
}

func TestCombineForPrompt_LabelsSources(t *testing.T) {
	items := []types.SourceItem{
		{Kind: types.SourceLink, Provenance: "https://github.com/a/b", DetectedType: types.TypeCodeHost, Text: "readme"},
		{Kind: types.SourceFile, Provenance: "notes.md", DetectedType: types.TypeTextFile, Text: "notes"},
	}

	got := CombineForPrompt(items)

	assert.Equal(t,
		"[Link 1] https://github.com/a/b (type: code-host)\nreadme\n\n[File 2] notes.md (type: text-file)\nnotes",
		got)
}

func TestCombineForPrompt_CapsTotal(t *testing.T) {
	items := make([]types.SourceItem, 4)
	for i := range items {
		items[i] = types.SourceItem{
			Kind:         types.SourceFile,
			Provenance:   "big.txt",
			DetectedType: types.TypeTextFile,
			Text:         strings.Repeat("x", MaxItemChars),
		}
	}

	got := CombineForPrompt(items)

	assert.Equal(t, MaxCombinedChars, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, TruncationMarker))
}

func TestCombineForPrompt_TruncatesItems(t *testing.T) {
	items := []types.SourceItem{{
		Kind:         types.SourceFile,
		Provenance:   "a.txt",
		DetectedType: types.TypeTextFile,
		Text:         strings.Repeat("q", MaxItemChars+100),
	}}

	got := CombineForPrompt(items)

	assert.Equal(t, MaxItemChars, strings.Count(got, "q"))
	assert.False(t, strings.HasSuffix(got, TruncationMarker))
}
