package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// OpenAI talks to an OpenAI-compatible chat-completions endpoint.
type OpenAI struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &OpenAI{
		client:      c,
		model:       model,
		temperature: 0.7,
		maxTokens:   512,
	}
}

func (o *OpenAI) Complete(ctx context.Context, system string, turns []Message) (string, error) {
	messages := make([]Message, 0, len(turns)+1)
	messages = append(messages, Message{Role: "system", Content: system})
	messages = append(messages, turns...)

	var out chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       o.model,
			Messages:    messages,
			Temperature: o.temperature,
			MaxTokens:   o.maxTokens,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}

	if out.Error != nil {
		return "", fmt.Errorf("completion api error: %s", out.Error.Message)
	}
	if resp.IsError() {
		return "", fmt.Errorf("completion api error: status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("completion api returned no choices")
	}

	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("completion api returned empty content")
	}
	return content, nil
}

func (o *OpenAI) Close() error { return nil }
