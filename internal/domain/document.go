package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinSectionTextLength is the minimum number of characters a section's
	// text must carry after trimming.
	MinSectionTextLength = 10

	// SectionPlaceholderText replaces section text the extraction model
	// failed to deliver.
	SectionPlaceholderText = "No content available."
)

// Section is a hierarchically-identified unit of contract text (e.g., clause "2.3").
// The identifier encodes the document hierarchy but is treated as opaque text.
type Section struct {
	Identifier string `json:"identifier" validate:"required"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text" validate:"required,min=10"`
}

// Validate reports whether the section satisfies its invariants.
func (s Section) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: section %q: %v", ErrValidation, s.Identifier, err)
	}
	return nil
}

// Document is an ordered collection of sections extracted from one scanned
// contract. Section order is extraction order; duplicate identifiers are kept
// as-is so downstream stages can report real-world inconsistencies.
type Document struct {
	Filename string    `json:"filename"`
	Sections []Section `json:"sections"`
}

// SectionIdentifiers lists identifiers in document order.
func (d Document) SectionIdentifiers() []string {
	ids := make([]string, len(d.Sections))
	for i, sec := range d.Sections {
		ids[i] = sec.Identifier
	}
	return ids
}

// Serialize renders the document into the stable text form embedded in
// inference prompts: one "<identifier> :: <title>\n<text>\n" block per
// section, blocks joined by blank lines, in document order.
func (d Document) Serialize() string {
	parts := make([]string, 0, len(d.Sections))
	for _, sec := range d.Sections {
		parts = append(parts, fmt.Sprintf("%s :: %s\n%s\n", sec.Identifier, sec.Title, sec.Text))
	}
	return strings.Join(parts, "\n\n")
}

// RepairSectionText enforces the minimum-length invariant on extracted text.
// Under-length text falls back to the section title, then to a fixed
// placeholder, so a Document built from model output always validates.
func RepairSectionText(text, title string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= MinSectionTextLength {
		return text
	}
	if t := strings.TrimSpace(title); utf8.RuneCountInString(t) >= MinSectionTextLength {
		return t
	}
	return SectionPlaceholderText
}
