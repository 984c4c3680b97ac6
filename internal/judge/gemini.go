// Package judge provides the external judgment capability: an LLM-backed
// implementation of types.Judge plus the judgment caches layered in front
// of it.
package judge

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"dealdesk/internal/logging"
	"dealdesk/internal/types"
)

// GeminiJudge implements types.Judge using Google's Gemini API.
type GeminiJudge struct {
	client *genai.Client
	model  string
}

// NewGeminiJudge creates a Gemini-backed judge.
func NewGeminiJudge(ctx context.Context, apiKey, model string) (*GeminiJudge, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiJudge{
		client: client,
		model:  model,
	}, nil
}

// Judge sends one framed judgment request and returns the raw response
// text. Response validation belongs to the runner; this layer only
// rejects empty responses.
func (g *GeminiJudge) Judge(ctx context.Context, req types.JudgeRequest) (string, error) {
	logging.JudgeDebug("request: definition=%s submission=%s model=%s",
		req.DefinitionID, req.SubmissionID, g.model)

	contents := []*genai.Content{
		genai.NewContentFromText(req.UserPrompt, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed for %s: %w", req.DefinitionID, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty response for %s", req.DefinitionID)
	}

	logging.Judge("response for %s/%s: %d chars", req.DefinitionID, req.SubmissionID, len(text))
	return text, nil
}

// Model returns the configured model name.
func (g *GeminiJudge) Model() string {
	return g.model
}
