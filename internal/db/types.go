package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swzro/builders/internal/types"
)

// User represents a user profile
type User struct {
	ID        uuid.UUID             `json:"id"`
	Email     string                `json:"email,omitempty"`
	Username  *string               `json:"username"`
	Name      string                `json:"name"`
	Bio       string                `json:"bio"`
	Education []types.EducationItem `json:"education"`
	Languages []types.LanguageItem  `json:"language"`
	Etc       string                `json:"etc"`
	Skills    []types.SkillGroup    `json:"skills"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// PublicProfile drops fields that only the owner may see.
func (u *User) PublicProfile() *User {
	out := *u
	out.Email = ""
	return &out
}

// Build is a saved portfolio entry.
type Build struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"userId"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	DurationStart string         `json:"durationStart"`
	DurationEnd   *string        `json:"durationEnd"`
	Category      types.Category `json:"category"`
	Tags          StringArray    `json:"tags"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	IsPublic      bool           `json:"isPublic"`
	SourceURLs    StringArray    `json:"sourceUrls"`
	Role          string         `json:"role"`
	Lesson        string         `json:"lesson"`
	Outcomes      string         `json:"outcomes"`
	AIGenerated   bool           `json:"aiGenerated"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", src)
	}
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// jsonValue encodes v as JSONB, writing an empty array for nil slices.
func jsonValue[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}
