// Package models defines the core data structures for schemes, categories,
// users, sessions and chat messages.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme is a government welfare scheme record as stored in the schemes table.
type Scheme struct {
	// ID is the unique, immutable identifier of the scheme.
	ID string `json:"id"`
	// Title is the scheme name.
	Title string `json:"title"`
	// Description is a free-text summary.
	Description string `json:"description"`
	// EligibilityCriteria lists who may apply.
	EligibilityCriteria string `json:"eligibility_criteria"`
	// Benefits describes what the scheme provides.
	Benefits string `json:"benefits"`
	// ApplicationProcess describes how to apply.
	ApplicationProcess string `json:"application_process"`
	// Category is the canonical category label.
	Category string `json:"category"`
	// VideoURL optionally references an explainer video.
	VideoURL string `json:"video_url,omitempty"`
}

// ErrMalformedRecord is returned when a raw record cannot become a Scheme.
var ErrMalformedRecord = errors.New("malformed scheme record")

// SchemeFromRecord converts a loosely typed record (decoded JSON or YAML)
// into a Scheme. Every field is coerced to display text once, here, so
// nothing downstream has to deal with non-string values.
// The category is canonicalized; a missing title or unknown category is rejected.
func SchemeFromRecord(rec map[string]any) (Scheme, error) {
	s := Scheme{
		ID:                  strings.TrimSpace(Text(rec["id"])),
		Title:               strings.TrimSpace(Text(rec["title"])),
		Description:         Text(rec["description"]),
		EligibilityCriteria: Text(rec["eligibility_criteria"]),
		Benefits:            Text(rec["benefits"]),
		ApplicationProcess:  Text(rec["application_process"]),
		VideoURL:            strings.TrimSpace(Text(rec["video_url"])),
	}
	if s.Title == "" {
		return Scheme{}, fmt.Errorf("%w: missing title", ErrMalformedRecord)
	}
	cat, ok := ParseCategory(Text(rec["category"]))
	if !ok {
		return Scheme{}, fmt.Errorf("%w: %q has unknown category %q", ErrMalformedRecord, s.Title, Text(rec["category"]))
	}
	s.Category = cat.Label()
	return s, nil
}

// Matches reports whether the scheme title or description contains query,
// ignoring case.
func (s Scheme) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Description), q)
}
