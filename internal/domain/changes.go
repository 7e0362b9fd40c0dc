package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// MinSummaryLength is the minimum length of a change summary after trimming.
const MinSummaryLength = 20

// AlignedSection maps one original section onto its amendment counterpart.
// Relation is free-form model output ("modified", "new", "deleted", "moved"
// have been observed) and is passed through without interpretation.
type AlignedSection struct {
	OriginalID  string `json:"original_id"`
	AmendmentID string `json:"amendment_id"`
	Relation    string `json:"relation"`
}

// AlignmentMapping is the structural correspondence between an original and
// an amended document, produced by the alignment stage and consumed unchanged
// by change extraction. It is never persisted and never validated beyond
// having parsed as JSON.
type AlignmentMapping struct {
	AlignedSections []AlignedSection `json:"aligned_sections"`
	StructuralNotes string           `json:"structural_notes"`
}

// ChangeReport is the validated final output: which sections changed, which
// legal/business topics the changes touch, and a natural-language summary.
// Instances only exist if NewChangeReport accepted them, so downstream
// consumers can rely on every field being populated.
type ChangeReport struct {
	SectionsChanged    []string `json:"sections_changed" validate:"required,min=1"`
	TopicsTouched      []string `json:"topics_touched" validate:"required,min=1"`
	SummaryOfTheChange string   `json:"summary_of_the_change"`
}

// NewChangeReport builds a ChangeReport, enforcing its invariants: both list
// fields non-empty and a summary of at least MinSummaryLength characters
// after trimming. Violations are reported together in a single ErrValidation.
func NewChangeReport(sectionsChanged, topicsTouched []string, summary string) (ChangeReport, error) {
	report := ChangeReport{
		SectionsChanged:    sectionsChanged,
		TopicsTouched:      topicsTouched,
		SummaryOfTheChange: summary,
	}

	var violations []string
	if err := validate.Struct(report); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ChangeReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fe := range fieldErrs {
			violations = append(violations, describeViolation(fe))
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(summary)) < MinSummaryLength {
		violations = append(violations,
			fmt.Sprintf("summary_of_the_change must be at least %d characters", MinSummaryLength))
	}

	if len(violations) > 0 {
		return ChangeReport{}, fmt.Errorf("%w: %s", ErrValidation, strings.Join(violations, "; "))
	}
	return report, nil
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Field() {
	case "SectionsChanged":
		return "sections_changed must contain at least one section identifier"
	case "TopicsTouched":
		return "topics_touched must contain at least one topic"
	default:
		return fmt.Sprintf("%s failed constraint %q", fe.Field(), fe.Tag())
	}
}
