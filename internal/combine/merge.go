package combine

import (
	"strings"
	"time"

	"github.com/swzro/builders/internal/types"
)

// Merge combines two drafts field by field without the model. It never fails.
func Merge(a, b *types.DraftRecord, now time.Time) *types.DraftRecord {
	if a == nil {
		a = &types.DraftRecord{}
	}
	if b == nil {
		b = &types.DraftRecord{}
	}

	merged := &types.DraftRecord{
		Title:         firstNonEmpty(a.Title, b.Title, DefaultTitle),
		Description:   joinText(a.Description, b.Description),
		Category:      types.CategoryOther,
		DurationStart: earliest(a.DurationStart, b.DurationStart),
		DurationEnd:   latest(a.DurationEnd, b.DurationEnd),
		Tags:          types.NormalizeTags(append(append([]string{}, a.Tags...), b.Tags...)),
		Role:          joinText(a.Role, b.Role),
		Lesson:        joinText(a.Lesson, b.Lesson),
		Outcomes:      joinText(a.Outcomes, b.Outcomes),
		SourceURLs:    append([]string{}, a.SourceURLs...),
		IsPublic:      true,
		AIGenerated:   true,
	}

	if c, ok := types.ParseCategory(string(a.Category)); ok {
		merged.Category = c
	} else if c, ok := types.ParseCategory(string(b.Category)); ok {
		merged.Category = c
	}
	if merged.DurationStart == "" {
		merged.DurationStart = types.FormatDate(now)
	}

	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinText(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "", a == b:
		return a
	}
	return a + "\n\n" + b
}

// earliest returns the earlier of two valid dates. Unparseable dates are ignored, so
// the result is empty when neither is valid.
func earliest(a, b string) string {
	va, vb := types.ValidDate(a), types.ValidDate(b)
	switch {
	case va && vb:
		if b < a {
			return b
		}
		return a
	case va:
		return a
	case vb:
		return b
	}
	return ""
}

// latest returns the later of two valid end dates, or nil when neither is valid.
func latest(a, b *string) *string {
	var sa, sb string
	if a != nil {
		sa = *a
	}
	if b != nil {
		sb = *b
	}

	va, vb := types.ValidDate(sa), types.ValidDate(sb)
	var out string
	switch {
	case va && vb:
		out = sa
		if sb > sa {
			out = sb
		}
	case va:
		out = sa
	case vb:
		out = sb
	default:
		return nil
	}
	return types.StringPtr(out)
}
