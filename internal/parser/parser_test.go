package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane.doe@example.com

Backend engineer with 6 years of Go and PostgreSQL experience.
Built services on Kubernetes and Redis, deployed to GCP.
`

func TestParse_TxtFile(t *testing.T) {
	p := New()

	parsed, err := p.Parse("resume.txt", strings.NewReader(sampleResume))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", parsed.Name)
	assert.Equal(t, "jane.doe@example.com", parsed.Email)
	assert.Contains(t, parsed.Skills, "Go")
	assert.Contains(t, parsed.Skills, "PostgreSQL")
	assert.Contains(t, parsed.Skills, "Kubernetes")
	assert.NotEmpty(t, parsed.Summary)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	p := New()

	_, err := p.Parse("resume.png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestFromText_SummaryIsBounded(t *testing.T) {
	long := strings.Repeat("word ", 500)
	parsed := FromText(long)
	assert.LessOrEqual(t, len(parsed.Summary), maxSummaryLen)
}

func TestGuessName_SkipsEmailAndDigits(t *testing.T) {
	text := "\n\njane@x.com\nCall 555-0100\n"
	assert.Equal(t, "", guessName(text))
}
