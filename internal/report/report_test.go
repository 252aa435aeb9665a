// ABOUTME: Tests for CSV round-tripping and table rendering of reports.
// ABOUTME: Uses testify for structural comparisons.
package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/sectiondiff/internal/models"
)

func sampleReport() *models.Report {
	r := models.NewReport(0.75, "greedy")
	r.Records = []models.MatchRecord{
		models.Matched("Data Collection", "How We Collect Data", 0.8765),
		models.Matched("Cookies, and Tracking", "Cookies", 0.91),
		models.MissingInB(`Your "Rights"`),
		models.MissingInA("Children's Privacy"),
	}
	return r
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Heading A,Matched Heading B,Similarity Score,Status", lines[0])
	assert.Equal(t, "Data Collection,How We Collect Data,0.88,Matched", lines[1])
	assert.Equal(t, `"Your ""Rights""",Not Found,-,Missing in B`, lines[3])
	assert.Equal(t, "-,Children's Privacy,-,Missing in A", lines[4])
}

func TestCSVRoundTrip(t *testing.T) {
	original := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, original))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(original.Records))

	for i, want := range original.Records {
		got := parsed[i]
		assert.Equal(t, want.HeadingA, got.HeadingA)
		assert.Equal(t, want.HeadingB, got.HeadingB)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, FormatScore(want.Score), FormatScore(got.Score))
	}
}

func TestReadCSVMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"bad header": "A,B,C,D\n",
		"bad status": "Heading A,Matched Heading B,Similarity Score,Status\nx,y,0.90,Maybe\n",
		"bad score":  "Heading A,Matched Heading B,Similarity Score,Status\nx,y,high,Matched\n",
		"short row":  "Heading A,Matched Heading B,Similarity Score,Status\nx,y\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFormatScore(t *testing.T) {
	score := 0.999
	assert.Equal(t, "1.00", FormatScore(&score))
	assert.Equal(t, "-", FormatScore(nil))
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status models.Status
		want   string
	}{
		{models.StatusMatched, "✔ Matched"},
		{models.StatusMissingInB, "✘ Missing in B"},
		{models.StatusMissingInA, "✘ Missing in A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusLabel(tt.status))
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleReport(), TableOptions{Plain: true})
	assert.Contains(t, out, "Matched Heading B")
	assert.Contains(t, out, "How We Collect Data")
	assert.Contains(t, out, "✔ Matched")
	assert.Contains(t, out, "✘ Missing in A")
	assert.Contains(t, out, "2 matched, 1 missing in B, 1 missing in A (threshold 0.75, greedy)")
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable(models.NewReport(0.65, "one-to-one"), TableOptions{Plain: true})
	assert.Contains(t, out, "0 matched, 0 missing in B, 0 missing in A")
}
