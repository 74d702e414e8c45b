package parsing

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/schemas"
	"github.com/swzro/builders/internal/types"
)

// DecodeDraft turns a raw model response into a draft. The first JSON object in the
// text is used; fields that are missing or malformed take their value from defaults.
// SourceURLs, IsPublic and AIGenerated are left for the caller to stamp.
func DecodeDraft(raw string, defaults *types.DraftRecord) (*types.DraftRecord, error) {
	obj, ok := llm.ExtractJSONObject(raw)
	if !ok {
		return nil, &ParseError{Message: "no JSON object in model response"}
	}

	if err := schemas.ValidateDraft(obj); err != nil {
		var validationErr *schemas.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, &ParseError{Message: "model response is not valid JSON", Cause: err}
		}
		for _, fe := range validationErr.Errors {
			log.Debug().Str("field", fe.Field).Str("reason", fe.Message).Msg("draft field failed schema validation")
		}
		log.Warn().
			Strs("fields", slices.Sorted(maps.Keys(validationErr.TopLevelFields()))).
			Msg("model draft has invalid fields; using defaults where they cannot be coerced")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	if missing := missingFields(fields); len(missing) > 0 {
		log.Debug().Strs("fields", missing).Msg("model draft omitted fields")
	}

	return coerceDraft(fields, defaults), nil
}

// missingFields lists the schema fields absent from a decoded response, in schema order.
func missingFields(fields map[string]any) []string {
	var missing []string
	for _, name := range DraftSchema().FieldNames() {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func coerceDraft(fields map[string]any, defaults *types.DraftRecord) *types.DraftRecord {
	if defaults == nil {
		defaults = &types.DraftRecord{Category: types.CategoryOther}
	}

	d := &types.DraftRecord{
		Title:         stringOr(fields, "title", defaults.Title),
		Description:   stringOr(fields, "description", defaults.Description),
		Category:      defaults.Category,
		DurationStart: defaults.DurationStart,
		Tags:          []string{},
		Role:          stringOr(fields, "role", ""),
		Lesson:        stringOr(fields, "lesson", ""),
		Outcomes:      stringOr(fields, "outcomes", ""),
	}

	if c, ok := types.ParseCategory(stringOr(fields, "category", "")); ok {
		d.Category = c
	}
	if start := stringOr(fields, "durationStart", ""); types.ValidDate(start) {
		d.DurationStart = start
	}
	if end := stringOr(fields, "durationEnd", ""); types.ValidDate(end) {
		d.DurationEnd = types.StringPtr(end)
	}
	if tags, ok := fields["tags"].([]any); ok {
		d.Tags = types.NormalizeTags(stringsOf(tags))
	}

	return d
}

// stringOr returns the trimmed string at key, or def when it is absent, empty or not a string.
func stringOr(fields map[string]any, key, def string) string {
	s, ok := fields[key].(string)
	if !ok {
		return def
	}
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func stringsOf(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
