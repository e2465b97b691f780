package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShows(t *testing.T) {
	shows, err := parseShows(`{"shows": [{"artist": "Phish", "venue": "MSG", "date": "12/31/2023", "city": "New York"}]}`)

	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Phish", shows[0].Artist)
	assert.Equal(t, "MSG", shows[0].Venue)
	assert.Equal(t, "12/31/2023", shows[0].Date)
	assert.Equal(t, "New York", shows[0].City)
}

func TestParseShows_MarkdownFences(t *testing.T) {
	shows, err := parseShows("```json\n{\"shows\": [{\"artist\": \"Wilco\", \"venue\": \"Ryman\", \"date\": \"2023-09-20\", \"city\": \"\"}]}\n```")

	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Wilco", shows[0].Artist)
}

func TestParseShows_Empty(t *testing.T) {
	shows, err := parseShows(`{"shows": []}`)

	require.NoError(t, err)
	assert.Empty(t, shows)
}

func TestParseShows_NotJSON(t *testing.T) {
	_, err := parseShows("I could not find any concerts in this image.")
	assert.Error(t, err)
}

func TestCleanJSONResponse(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `{"shows": []}`, `{"shows": []}`},
		{"json fence", "```json\n{\"shows\": []}\n```", `{"shows": []}`},
		{"bare fence", "```\n{\"shows\": []}\n```", `{"shows": []}`},
		{"surrounding space", "  {\"shows\": []}  ", `{"shows": []}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, cleanJSONResponse(tc.input))
		})
	}
}
