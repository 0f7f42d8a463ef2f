package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned when a document name is empty or malformed.
var ErrInvalidName = errors.New("invalid document name")

// Document is a single note. Documents are replaced, never edited in place:
// saving a document with an existing name replaces its text.
type Document struct {
	// ID is the surrogate key assigned by relational backends.
	// Nil for backends that key purely by name.
	ID *int64 `json:"id,omitempty"`

	// Name is the normalized document name and its identity within a store.
	Name string `json:"documentName"`

	// Text is the full document content.
	Text string `json:"text"`
}

// New constructs a Document, normalizing and validating the name.
func New(id *int64, name, text string) (Document, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Name: normalized, Text: text}, nil
}

// Equal reports whether two documents have the same id, name and text.
func (d Document) Equal(other Document) bool {
	if d.Name != other.Name || d.Text != other.Text {
		return false
	}
	switch {
	case d.ID == nil && other.ID == nil:
		return true
	case d.ID == nil || other.ID == nil:
		return false
	default:
		return *d.ID == *other.ID
	}
}

// WithID returns a copy of the document carrying the given surrogate key.
func (d Document) WithID(id int64) Document {
	d.ID = &id
	return d
}

// NormalizeName returns the canonical form of a document name.
func NormalizeName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	}

	normalized := strings.TrimSpace(name)
	normalized = norm.NFC.String(normalized)
	// A Caser carries state, so each call gets its own.
	normalized = cases.Lower(language.Und).String(normalized)

	if normalized == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	for _, r := range normalized {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q contains control characters", ErrInvalidName, name)
		}
	}

	return normalized, nil
}
