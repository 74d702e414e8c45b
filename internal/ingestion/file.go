package ingestion

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/swzro/builders/internal/types"
)

var acceptedMediaTypes = map[string]bool{
	"text/plain":    true,
	"text/markdown": true,
	"text/csv":      true,
}

var acceptedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
}

func declaredMediaType(declared string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(declared))
}

// AcceptsFile reports whether a file is a supported text file, by declared type or extension.
func AcceptsFile(name, declaredType string) bool {
	if acceptedMediaTypes[declaredMediaType(declaredType)] {
		return true
	}
	return acceptedExtensions[strings.ToLower(filepath.Ext(name))]
}

func isMarkdown(name, declaredType string) bool {
	if declaredMediaType(declaredType) == "text/markdown" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// ValidateFile rejects files that are not supported text files.
func ValidateFile(f types.FileInput) error {
	if !AcceptsFile(f.Name, f.DeclaredType) {
		return &ValidationError{
			File:    f.Name,
			Message: "only .txt, .md and .csv text files are supported",
		}
	}
	return nil
}

// ExtractFile validates an uploaded file and returns its cleaned, truncated text.
func ExtractFile(f types.FileInput) (types.SourceItem, error) {
	if err := ValidateFile(f); err != nil {
		return types.SourceItem{}, err
	}

	content := f.Content
	if isMarkdown(f.Name, f.DeclaredType) {
		content = MarkdownToText(content)
	}

	return types.SourceItem{
		Kind:         types.SourceFile,
		Provenance:   f.Name,
		DetectedType: types.TypeTextFile,
		Text:         Truncate(CleanText(content), MaxItemChars),
	}, nil
}

// ExtractFiles extracts every file; the first rejected file aborts the batch.
func ExtractFiles(files []types.FileInput) ([]types.SourceItem, error) {
	items := make([]types.SourceItem, 0, len(files))
	for _, f := range files {
		item, err := ExtractFile(f)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// MarkdownToText renders markdown as plain text: markup is dropped, list items become "- " lines
// and code blocks are kept verbatim.
func MarkdownToText(markdown string) string {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		case *ast.String:
			if entering {
				sb.Write(node.Value)
			}
			return ast.WalkContinue, nil
		case *ast.AutoLink:
			if entering {
				sb.Write(node.URL(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(src))
				}
				sb.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				sb.WriteString("- ")
			}
		}

		if !entering && n.Type() == ast.TypeBlock {
			sb.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})

	return sb.String()
}
