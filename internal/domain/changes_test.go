package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeReportValid(t *testing.T) {
	t.Parallel()

	report, err := NewChangeReport(
		[]string{"2.1", "5.3"},
		[]string{"payment terms", "liability"},
		"The amendment updates payment deadlines and caps liability for indirect damages.",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"2.1", "5.3"}, report.SectionsChanged)
	assert.Contains(t, report.TopicsTouched, "payment terms")
	assert.Equal(t,
		"The amendment updates payment deadlines and caps liability for indirect damages.",
		report.SummaryOfTheChange)
}

func TestNewChangeReportInvalid(t *testing.T) {
	t.Parallel()

	longEnough := "The payment schedule moved from monthly to quarterly."

	tests := []struct {
		name     string
		sections []string
		topics   []string
		summary  string
	}{
		{
			name:     "empty sections_changed",
			sections: nil,
			topics:   []string{"payment terms"},
			summary:  longEnough,
		},
		{
			name:     "empty topics_touched",
			sections: []string{"2.1"},
			topics:   []string{},
			summary:  longEnough,
		},
		{
			name:     "summary too short",
			sections: []string{"2.1"},
			topics:   []string{"payment terms"},
			summary:  "Too short",
		},
		{
			name:     "summary only whitespace padding",
			sections: []string{"2.1"},
			topics:   []string{"payment terms"},
			summary:  "   Too short            ",
		},
		{
			name:     "everything wrong",
			sections: nil,
			topics:   nil,
			summary:  "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewChangeReport(tc.sections, tc.topics, tc.summary)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNewChangeReportCollectsAllViolations(t *testing.T) {
	t.Parallel()

	_, err := NewChangeReport(nil, nil, "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sections_changed")
	assert.Contains(t, err.Error(), "topics_touched")
	assert.Contains(t, err.Error(), "summary_of_the_change")
}
