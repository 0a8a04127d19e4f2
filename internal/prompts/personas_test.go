package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castlehq/checkmate/internal/models"
)

func TestValid(t *testing.T) {
	for _, id := range IDs() {
		assert.True(t, Valid(id), id)
	}
	assert.True(t, Valid("ROOK"), "persona ids are case-insensitive")
	assert.False(t, Valid("jester"))
}

func TestGreeting_MentionsPersonaAndRole(t *testing.T) {
	g := Greeting("rook", "backend")
	lower := strings.ToLower(g)
	assert.Contains(t, lower, "rook")
	assert.Contains(t, lower, "backend")
}

func TestGreeting_IsDeterministic(t *testing.T) {
	assert.Equal(t, Greeting("queen", "data engineer"), Greeting("queen", "data engineer"))
}

func TestSystemInstruction(t *testing.T) {
	s := SystemInstruction("bishop", "backend", "senior", "")
	assert.Contains(t, s, "Bishop")
	assert.Contains(t, s, "backend")
	assert.Contains(t, s, "senior")
	assert.NotContains(t, s, "resume", "no resume section without context")

	withCtx := SystemInstruction("bishop", "backend", "senior", "Skills: Go")
	assert.Contains(t, withCtx, "Skills: Go")
}

func TestResumeContext(t *testing.T) {
	assert.Equal(t, "", ResumeContext(nil))

	got := ResumeContext(&models.ParsedResume{
		Name:    "Ada",
		Skills:  []string{"Go", "Postgres"},
		Summary: "Seasoned engineer.",
	})
	assert.Contains(t, got, "Ada")
	assert.Contains(t, got, "Go, Postgres")
	assert.Contains(t, got, "Seasoned engineer.")
}
