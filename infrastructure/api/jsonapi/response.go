// Package jsonapi provides JSON:API error documents for API responses.
package jsonapi

// Document represents a JSON:API top-level document carrying errors.
// See: https://jsonapi.org/format/#document-structure
type Document struct {
	Errors []Error `json:"errors"`
	Meta   *Meta   `json:"meta,omitempty"`
}

// Meta holds non-standard meta-information about a document.
type Meta map[string]any

// Error represents a JSON:API error object.
// See: https://jsonapi.org/format/#error-objects
type Error struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status,omitempty"`
	Code   string       `json:"code,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource holds references to the source of an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// NewErrorDocument wraps a single error.
func NewErrorDocument(e Error) Document {
	return Document{Errors: []Error{e}}
}
