package types

// SourceKind distinguishes fetched links from uploaded files.
type SourceKind string

// SourceKind constants
const (
	SourceLink SourceKind = "link"
	SourceFile SourceKind = "file"
)

// DetectedType is the platform or file classification of a source.
type DetectedType string

// DetectedType constants
const (
	TypeCodeHost       DetectedType = "code-host"
	TypeDesignTool     DetectedType = "design-tool"
	TypeDocumentTool   DetectedType = "document-tool"
	TypeVideo          DetectedType = "video"
	TypeGenericWebsite DetectedType = "generic-website"
	TypeTextFile       DetectedType = "text-file"
)

// SourceItem is the readable text extracted from one link or file.
type SourceItem struct {
	Kind         SourceKind   `json:"kind"`
	Provenance   string       `json:"provenance"`
	DetectedType DetectedType `json:"detectedType"`
	Text         string       `json:"text"`
}

// FileInput is an uploaded file as received from a client.
type FileInput struct {
	Name         string `json:"name" validate:"required"`
	Content      string `json:"content"`
	DeclaredType string `json:"type,omitempty"`
}

// AnalyzeRequest is the request body for running the analysis pipeline.
type AnalyzeRequest struct {
	Links []string    `json:"links" validate:"omitempty,dive,url"`
	Files []FileInput `json:"files" validate:"omitempty,dive"`
}

// CombineRequest is the request body for merging two drafts.
type CombineRequest struct {
	A *DraftRecord `json:"a"`
	B *DraftRecord `json:"b"`
}

// Validate checks the dates and category of each supplied draft.
func (r *CombineRequest) Validate() error {
	return validate.Struct(r)
}
