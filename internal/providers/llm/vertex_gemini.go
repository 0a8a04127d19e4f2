package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

// Complete flattens the system instruction and turns into a single text
// prompt, streams one generation, and aggregates the text parts.
func (v *VertexGemini) Complete(ctx context.Context, system string, turns []Message) (string, error) {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")
	for _, t := range turns {
		switch t.Role {
		case RoleAssistant:
			b.WriteString("Interviewer: ")
		default:
			b.WriteString("Candidate: ")
		}
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString("Interviewer:")

	var out strings.Builder
	it := v.model.GenerateContentStream(ctx, vertexgenai.Text(b.String()))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}

		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					out.WriteString(string(t))
				}
			}
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errors.New("vertex returned no text candidates")
	}
	return text, nil
}
