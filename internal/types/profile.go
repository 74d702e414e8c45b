package types

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewValidator returns a validator with the builders-specific tags registered:
// "username", "draftdate" and "category".
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("draftdate", func(fl validator.FieldLevel) bool {
		return ValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

var validate = NewValidator()

// EducationItem is one entry of a user's education history.
type EducationItem struct {
	Institution string `json:"institution" validate:"required,max=100"`
	Degree      string `json:"degree,omitempty" validate:"max=100"`
	Field       string `json:"field,omitempty" validate:"max=100"`
	StartDate   string `json:"start_date,omitempty" validate:"omitempty,draftdate"`
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,draftdate"`
	IsCurrent   bool   `json:"is_current"`
}

// LanguageItem is a spoken language and proficiency level.
type LanguageItem struct {
	Name  string `json:"name" validate:"required,max=50"`
	Level string `json:"level" validate:"required,oneof=beginner intermediate advanced native"`
}

// SkillGroup groups skills under a category heading.
type SkillGroup struct {
	Category string   `json:"category" validate:"required,max=50"`
	Items    []string `json:"items" validate:"max=30,dive,required,max=50"`
}

// UpdateProfileRequest is the request body for editing the caller's profile.
type UpdateProfileRequest struct {
	Username  string          `json:"username" validate:"required,min=3,max=20,username"`
	Name      string          `json:"name" validate:"max=50"`
	Bio       string          `json:"bio" validate:"max=160"`
	Education []EducationItem `json:"education" validate:"max=10,dive"`
	Languages []LanguageItem  `json:"language" validate:"max=10,dive"`
	Etc       string          `json:"etc" validate:"max=300"`
	Skills    []SkillGroup    `json:"skills" validate:"max=20,dive"`
}

// Validate validates the UpdateProfileRequest using the validator.
func (r *UpdateProfileRequest) Validate() error {
	return validate.Struct(r)
}

// BuildInput is the editable content of a build, used for create and update.
type BuildInput struct {
	Title         string   `json:"title" validate:"required,max=100"`
	Description   string   `json:"description" validate:"required"`
	Category      Category `json:"category" validate:"required,category"`
	DurationStart string   `json:"durationStart" validate:"required,draftdate"`
	DurationEnd   *string  `json:"durationEnd,omitempty" validate:"omitempty,draftdate"`
	Tags          []string `json:"tags" validate:"max=5,dive,required,max=30"`
	ImageURL      string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
	IsPublic      bool     `json:"isPublic"`
	SourceURLs    []string `json:"sourceUrls" validate:"max=10,dive,url"`
	Role          string   `json:"role,omitempty"`
	Lesson        string   `json:"lesson,omitempty"`
	Outcomes      string   `json:"outcomes,omitempty"`
	AIGenerated   bool     `json:"aiGenerated"`
}

// Validate validates the BuildInput using the validator.
func (b *BuildInput) Validate() error {
	return validate.Struct(b)
}

// BuildInputFromDraft converts an analysis draft into build input ready to be saved.
func BuildInputFromDraft(d *DraftRecord) BuildInput {
	return BuildInput{
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		DurationStart: d.DurationStart,
		DurationEnd:   d.DurationEnd,
		Tags:          d.Tags,
		IsPublic:      d.IsPublic,
		SourceURLs:    d.SourceURLs,
		Role:          d.Role,
		Lesson:        d.Lesson,
		Outcomes:      d.Outcomes,
		AIGenerated:   d.AIGenerated,
	}
}

// UploadURLRequest asks for a signed URL to upload one object.
type UploadURLRequest struct {
	Bucket      string `json:"bucket" validate:"required,oneof=build-images avatars"`
	Path        string `json:"path" validate:"required,max=200"`
	FileName    string `json:"file_name" validate:"required,max=200"`
	ContentType string `json:"content_type" validate:"required,oneof=image/png image/jpeg image/gif image/webp"`
}

// Validate validates the UploadURLRequest using the validator.
func (r *UploadURLRequest) Validate() error {
	return validate.Struct(r)
}

// UploadURLResponse carries a signed upload URL and the public URL the object will have.
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
	Token     string `json:"token"`
}
