package parsing

import (
	"strings"

	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/types"
)

// DraftSchema describes the nine fields the model must return for a draft.
func DraftSchema() llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name: "DraftRecord",
		Fields: []llm.SchemaField{
			{Name: "title", Description: "short name of the activity", Required: true},
			{Name: "description", Description: "2-4 sentences on what it is and what it set out to do", Required: true},
			{Name: "role", Description: "what the builder personally did"},
			{Name: "durationStart", Description: "YYYY-MM-DD", Required: true},
			{Name: "durationEnd", Type: "string | null", Description: "YYYY-MM-DD, or null when ongoing or unknown"},
			{Name: "lesson", Description: "what the builder learned"},
			{Name: "outcomes", Description: "concrete results, deliverables or feedback"},
			{Name: "category", Description: "one value from the category list", Required: true},
			{Name: "tags", Type: `["string"]`, Description: "at most 5 keywords"},
		},
	}
}

// CategoryList renders the closed category set for prompts.
func CategoryList() string {
	names := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
