package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv"

	"github.com/castlehq/checkmate/internal/models"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Keyword scan stands in for real NER; good enough to flavor the prompt.
var skillKeywords = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript",
	"React", "Vue", "Angular", "Node.js", "Docker", "Kubernetes",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "AWS", "Azure", "GCP",
	"GraphQL", "REST", "gRPC", "Microservices", "Git", "CI/CD",
	"Machine Learning", "Data Science", "DevOps", "Terraform", "Linux",
}

const maxSummaryLen = 600

type Parser struct{}

func New() *Parser { return &Parser{} }

// Parse extracts text from the uploaded file and derives structured
// enrichment from it. The file type is decided by extension.
func (p *Parser) Parse(fileName string, r io.Reader) (*models.ParsedResume, error) {
	text, err := extractText(fileName, r)
	if err != nil {
		return nil, err
	}
	return FromText(text), nil
}

func extractText(fileName string, r io.Reader) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".txt":
		b, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ".pdf":
		res, err := docconv.Convert(r, "application/pdf", true)
		if err != nil {
			return "", err
		}
		return res.Body, nil
	case ".docx":
		res, err := docconv.Convert(r, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true)
		if err != nil {
			return "", err
		}
		return res.Body, nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// FromText builds the enrichment record from already-extracted text.
func FromText(text string) *models.ParsedResume {
	p := &models.ParsedResume{}

	if m := emailRe.FindString(text); m != "" {
		p.Email = m
	}
	p.Name = guessName(text)
	p.Skills = scanSkills(text)

	summary := strings.Join(strings.Fields(text), " ")
	if len(summary) > maxSummaryLen {
		summary = summary[:maxSummaryLen]
	}
	p.Summary = summary

	return p
}

// guessName takes the first short non-empty line without an @ or digits.
func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "@") || strings.ContainsAny(line, "0123456789") {
			continue
		}
		if words := strings.Fields(line); len(words) >= 1 && len(words) <= 5 {
			return line
		}
		break
	}
	return ""
}

func scanSkills(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range skillKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	return out
}
