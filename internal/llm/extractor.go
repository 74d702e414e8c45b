// Package llm - extractor.go describes structured output fields for extraction prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure the model is asked to return.
type ExtractionSchema struct {
	Name   string        // Schema name (e.g., "DraftRecord")
	Fields []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[\"string\"]", "string | null"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// RenderFields renders the schema as an annotated JSON skeleton for inclusion in a prompt.
func (s ExtractionSchema) RenderFields() string {
	var sb strings.Builder

	sb.WriteString("{\n")
	for i, field := range s.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")

	return sb.String()
}

// FieldNames returns the JSON names of every field, in order.
func (s ExtractionSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
