// Package fallback synthesizes a deterministic draft from source metadata alone.
// It is used whenever model analysis is unavailable, so it never fails.
package fallback

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/swzro/builders/internal/types"
)

type profile struct {
	title    string
	category types.Category
	tags     []string
}

var profiles = map[types.DetectedType]profile{
	types.TypeCodeHost: {
		title:    "GitHub project",
		category: types.CategoryProject,
		tags:     []string{"development", "GitHub", "coding", "programming"},
	},
	types.TypeDesignTool: {
		title:    "Figma design",
		category: types.CategoryProject,
		tags:     []string{"design", "Figma", "UI/UX", "graphics"},
	},
	types.TypeDocumentTool: {
		title:    "Notion document",
		category: types.CategoryOther,
		tags:     []string{"document", "Notion", "record", "collaboration"},
	},
	types.TypeVideo: {
		title:    "YouTube video",
		category: types.CategoryEducation,
		tags:     []string{"video", "YouTube", "media", "content"},
	},
	types.TypeGenericWebsite: {
		title:    "Web project",
		category: types.CategoryProject,
		tags:     []string{"web", "project"},
	},
	types.TypeTextFile: {
		title:    "Text-file-based project",
		category: types.CategoryProject,
		tags:     []string{"document", "text", "record", "project"},
	},
}

// StartDate returns the default start date: three months before now.
// The day is clamped to the end of the target month (May 31 gives Feb 29 or 28).
func StartDate(now time.Time) string {
	y, m, d := now.Date()
	first := time.Date(y, m-3, 1, 0, 0, 0, 0, now.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return types.FormatDate(first.AddDate(0, 0, d-1))
}

// Synthesize builds a placeholder draft for a batch of sources of one kind.
// The category, tags and default title follow the first item's detected type.
func Synthesize(items []types.SourceItem, now time.Time) *types.DraftRecord {
	p := profiles[types.TypeGenericWebsite]
	if len(items) > 0 {
		if known, ok := profiles[items[0].DetectedType]; ok {
			p = known
		}
	}

	title := titleFor(items)
	if title == "" {
		title = p.title
	}

	label := p.category.Label()
	return &types.DraftRecord{
		Title:         title,
		Description:   fmt.Sprintf("Describe this %s in detail: what it is, why it matters and what it set out to achieve.", label),
		Category:      p.category,
		DurationStart: StartDate(now),
		DurationEnd:   nil,
		Tags:          append([]string(nil), p.tags...),
		Role:          fmt.Sprintf("Describe the role you played in this %s.", label),
		Lesson:        fmt.Sprintf("Write down what you learned from this %s, such as new skills or concepts.", label),
		Outcomes:      fmt.Sprintf("Record the outcomes of this %s, such as finished deliverables or feedback received.", label),
		SourceURLs:    LinkURLs(items),
		IsPublic:      true,
		AIGenerated:   true,
	}
}

// ForLinks synthesizes a draft from the link items only.
func ForLinks(items []types.SourceItem, now time.Time) *types.DraftRecord {
	return Synthesize(ofKind(items, types.SourceLink), now)
}

// ForFiles synthesizes a draft from the file items only.
func ForFiles(items []types.SourceItem, now time.Time) *types.DraftRecord {
	return Synthesize(ofKind(items, types.SourceFile), now)
}

func ofKind(items []types.SourceItem, kind types.SourceKind) []types.SourceItem {
	var out []types.SourceItem
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// LinkURLs returns the provenance of every link item, in order.
func LinkURLs(items []types.SourceItem) []string {
	urls := []string{}
	for _, item := range items {
		if item.Kind == types.SourceLink {
			urls = append(urls, item.Provenance)
		}
	}
	return urls
}

func titleFor(items []types.SourceItem) string {
	for _, item := range items {
		if item.Kind == types.SourceFile {
			return TitleFromFileName(item.Provenance)
		}
	}
	for _, item := range items {
		if item.Kind == types.SourceLink {
			return TitleFromURL(item.Provenance)
		}
	}
	return ""
}

// TitleFromFileName derives a title from a file name: the extension is dropped,
// '-' and '_' become spaces and every word is capitalized.
func TitleFromFileName(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return humanize(base)
}

// TitleFromURL derives a title from the last non-empty path segment of a URL.
// It returns "" when the URL has no usable segment.
func TitleFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	var last string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			last = seg
		}
	}
	if last == "" || (strings.Contains(strings.ToLower(u.Host), "youtube.com") && last == "watch") {
		return ""
	}
	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}
	return humanize(last)
}

func humanize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
