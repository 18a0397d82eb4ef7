// ABOUTME: Core document model shared by every pipeline stage.
// ABOUTME: A Document is the full source of the user's page: HTML, CSS, and JavaScript.

package page

import "strings"

// Document holds the complete current source of a page. Stages treat it as an
// immutable input and produce a new Document as output.
type Document struct {
	HTML       string `json:"html"`
	CSS        string `json:"css"`
	JavaScript string `json:"javascript"`
}

// IsEmpty reports whether the document carries no content at all.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.HTML) == "" &&
		strings.TrimSpace(d.CSS) == "" &&
		strings.TrimSpace(d.JavaScript) == ""
}

// Patch holds the outcome of a mutation. A nil field means "no change requested
// for this field"; callers must retain the prior value, never substitute an
// empty string.
type Patch struct {
	HTML       *string `json:"html"`
	CSS        *string `json:"css"`
	JavaScript *string `json:"javascript"`
}

// Apply merges a patch onto a document, keeping prior values for nil fields.
func (d Document) Apply(p Patch) Document {
	out := d
	if p.HTML != nil {
		out.HTML = *p.HTML
	}
	if p.CSS != nil {
		out.CSS = *p.CSS
	}
	if p.JavaScript != nil {
		out.JavaScript = *p.JavaScript
	}
	return out
}

// Changed reports whether the patch would alter the document.
func (d Document) Changed(p Patch) bool {
	if p.HTML != nil && *p.HTML != d.HTML {
		return true
	}
	if p.CSS != nil && *p.CSS != d.CSS {
		return true
	}
	if p.JavaScript != nil && *p.JavaScript != d.JavaScript {
		return true
	}
	return false
}

// Str returns a *string for use in Patch literals.
func Str(s string) *string {
	return &s
}
