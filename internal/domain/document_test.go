package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairSectionText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		title string
		want  string
	}{
		{
			name:  "text long enough is kept as-is",
			text:  "Customer pays 10,000 USD per month.",
			title: "Fees",
			want:  "Customer pays 10,000 USD per month.",
		},
		{
			name:  "short text falls back to long title",
			text:  "n/a",
			title: "Confidentiality obligations",
			want:  "Confidentiality obligations",
		},
		{
			name:  "short text and short title fall back to placeholder",
			text:  "n/a",
			title: "Fees",
			want:  SectionPlaceholderText,
		},
		{
			name:  "empty text and empty title fall back to placeholder",
			text:  "",
			title: "",
			want:  SectionPlaceholderText,
		},
		{
			name:  "whitespace does not count toward the minimum",
			text:  "   a b    ",
			title: "",
			want:  SectionPlaceholderText,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repaired := RepairSectionText(tc.text, tc.title)
			assert.Equal(t, tc.want, repaired)

			sec := Section{Identifier: "1", Title: tc.title, Text: repaired}
			assert.NoError(t, sec.Validate())
		})
	}
}

func TestSectionValidate(t *testing.T) {
	t.Parallel()

	valid := Section{Identifier: "1.1", Title: "Fees", Text: "Customer pays 10,000 USD per month."}
	assert.NoError(t, valid.Validate())

	missingID := Section{Text: "Customer pays 10,000 USD per month."}
	assert.ErrorIs(t, missingID.Validate(), ErrValidation)

	shortText := Section{Identifier: "1", Text: "short"}
	assert.ErrorIs(t, shortText.Validate(), ErrValidation)
}

func TestDocumentSerialize(t *testing.T) {
	t.Parallel()

	doc := Document{
		Filename: "contract.png",
		Sections: []Section{
			{Identifier: "1", Title: "Fees", Text: "Customer pays 10,000 USD per month."},
			{Identifier: "2", Text: "Either party may terminate with 30 days notice."},
		},
	}

	want := "1 :: Fees\nCustomer pays 10,000 USD per month.\n" +
		"\n\n" +
		"2 :: \nEither party may terminate with 30 days notice.\n"
	assert.Equal(t, want, doc.Serialize())
}

func TestDocumentSectionIdentifiersKeepsDuplicatesAndOrder(t *testing.T) {
	t.Parallel()

	doc := Document{
		Sections: []Section{
			{Identifier: "2", Text: "Second section body text here."},
			{Identifier: "1", Text: "First section body text here."},
			{Identifier: "2", Text: "Duplicate identifier body text."},
		},
	}

	assert.Equal(t, []string{"2", "1", "2"}, doc.SectionIdentifiers())
}
