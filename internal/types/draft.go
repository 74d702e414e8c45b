// Package types provides type definitions for structured data used throughout the builders service.
package types

import (
	"strings"
	"time"
)

// DateLayout is the only accepted date format for draft durations.
const DateLayout = "2006-01-02"

// MaxTags is the maximum number of tags a draft or build may carry.
const MaxTags = 5

// Category is the closed set of activity categories a build belongs to.
type Category string

// Category constants
const (
	CategoryExternalActivity Category = "external-activity"
	CategoryInternship       Category = "internship"
	CategoryAward            Category = "award"
	CategoryProject          Category = "project"
	CategoryClub             Category = "club"
	CategoryCertificate      Category = "certificate"
	CategoryEducation        Category = "education"
	CategoryOther            Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryExternalActivity,
	CategoryInternship,
	CategoryAward,
	CategoryProject,
	CategoryClub,
	CategoryCertificate,
	CategoryEducation,
	CategoryOther,
}

var categoryAliases = map[string]Category{
	"external activity": CategoryExternalActivity,
	"extracurricular":   CategoryExternalActivity,
	"activity":          CategoryExternalActivity,
	"volunteer":         CategoryExternalActivity,
	"intern":            CategoryInternship,
	"internships":       CategoryInternship,
	"awards":            CategoryAward,
	"prize":             CategoryAward,
	"competition":       CategoryAward,
	"projects":          CategoryProject,
	"clubs":             CategoryClub,
	"society":           CategoryClub,
	"certification":     CategoryCertificate,
	"certifications":    CategoryCertificate,
	"license":           CategoryCertificate,
	"course":            CategoryEducation,
	"training":          CategoryEducation,
	"etc":               CategoryOther,
}

// Label returns a human-readable name for the category.
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "-", " ")
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a free-form category string onto the closed set.
// Matching is case-insensitive and treats spaces, hyphens and underscores alike.
func ParseCategory(s string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	slug := strings.NewReplacer(" ", "-", "_", "-").Replace(key)
	if c := Category(slug); c.Valid() {
		return c, true
	}
	if c, ok := categoryAliases[strings.ReplaceAll(slug, "-", " ")]; ok {
		return c, true
	}
	return "", false
}

// DraftRecord is a structured, editable draft of a portfolio entry.
type DraftRecord struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      Category `json:"category" validate:"omitempty,category"`
	DurationStart string   `json:"durationStart" validate:"omitempty,draftdate"`
	DurationEnd   *string  `json:"durationEnd,omitempty" validate:"omitempty,draftdate"`
	Tags          []string `json:"tags"`
	Role          string   `json:"role,omitempty"`
	Lesson        string   `json:"lesson,omitempty"`
	Outcomes      string   `json:"outcomes,omitempty"`
	SourceURLs    []string `json:"sourceUrls"`
	IsPublic      bool     `json:"isPublic"`
	AIGenerated   bool     `json:"aiGenerated"`
}

// PipelineOutcome is the result of the analysis pipeline: a draft and an optional advisory
// telling the user that some or all of the content was generated without the model.
type PipelineOutcome struct {
	Draft    *DraftRecord `json:"draft"`
	Advisory string       `json:"advisory,omitempty"`
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// NormalizeTags trims tags, drops empty and duplicate values, and keeps at most MaxTags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}
