package client

import (
	"context"
	"fmt"

	"github.com/autoops/backend/internal/config"
	"google.golang.org/genai"
)

// GeminiClient - COMPLETION_PROVIDER=gemini 일 때 사용하는 completion 클라이언트
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.CompletionConfig) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	genCfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	if res == nil {
		return "", nil
	}
	return res.Text(), nil
}
