package prompts

import (
	"fmt"
	"strings"

	"github.com/castlehq/checkmate/internal/models"
)

// Persona selects the interviewer's prompt template and display flavor.
type Persona struct {
	ID    string
	Name  string
	Style string
}

var personas = map[string]Persona{
	"pawn": {
		ID:    "pawn",
		Name:  "Pawn",
		Style: "warm and encouraging; you advance one small step at a time, building from fundamentals toward harder ground",
	},
	"knight": {
		ID:    "knight",
		Name:  "Knight",
		Style: "unpredictable and curious; you jump between topics in unexpected L-shaped moves to see how the candidate adapts",
	},
	"bishop": {
		ID:    "bishop",
		Name:  "Bishop",
		Style: "precise and patient; you pick a single diagonal line of inquiry and probe it deeply before changing course",
	},
	"rook": {
		ID:    "rook",
		Name:  "Rook",
		Style: "direct and structured; you ask straight, no-nonsense questions and expect concrete answers",
	},
	"queen": {
		ID:    "queen",
		Name:  "Queen",
		Style: "demanding and wide-ranging; you move freely across design, coding, and behavioral territory and press on weak answers",
	},
	"king": {
		ID:    "king",
		Name:  "King",
		Style: "measured and strategic; you care about judgment, trade-offs, and the big picture more than trivia",
	},
}

func Valid(id string) bool {
	_, ok := personas[strings.ToLower(id)]
	return ok
}

func IDs() []string {
	return []string{"pawn", "knight", "bishop", "rook", "queen", "king"}
}

// Greeting is the seeded opening message. Fixed template, no external call.
func Greeting(id, role string) string {
	p := lookup(id)
	return fmt.Sprintf(
		"Welcome to the board. I am the %s (%s), and I'll be your interviewer today for the %s role. Let's open simply: tell me a bit about yourself and what drew you to this position.",
		p.Name, p.ID, role,
	)
}

// SystemInstruction parameterizes the completion request. resumeContext may
// be empty when no parsed resume is available.
func SystemInstruction(id, role, level, resumeContext string) string {
	p := lookup(id)

	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s, a chess-piece-themed technical interviewer. Your manner: %s.\n", p.Name, p.Style)
	fmt.Fprintf(&b, "You are conducting a mock interview for a %s position at the %s level.\n", role, level)
	b.WriteString("Ask one question at a time, keep replies concise (under 120 words), stay on topic, and react to the candidate's previous answer before moving on.")
	if resumeContext != "" {
		b.WriteString("\n\nCandidate background from their resume:\n")
		b.WriteString(resumeContext)
	}
	return b.String()
}

// ResumeContext formats parsed resume data into a short context string.
func ResumeContext(p *models.ParsedResume) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Name != "" {
		parts = append(parts, "Name: "+p.Name)
	}
	if len(p.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(p.Skills, ", "))
	}
	if p.Summary != "" {
		summary := p.Summary
		if len(summary) > 400 {
			summary = summary[:400]
		}
		parts = append(parts, "Summary: "+summary)
	}
	return strings.Join(parts, "\n")
}

func lookup(id string) Persona {
	if p, ok := personas[strings.ToLower(id)]; ok {
		return p
	}
	// unknown ids fall back to the most neutral interviewer
	return personas["rook"]
}
