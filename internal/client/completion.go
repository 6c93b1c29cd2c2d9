// LLM completion API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - COMPLETION_PROVIDER: openai(기본) | gemini
//   - OPENAI_API_KEY / AI_API_KEY
//   - COMPLETION_MODEL (default: gpt-4o / gemini-2.0-flash)
//
// 두 provider 모두 CompletionRequest → 응답 텍스트 하나로 동일하게 동작

package client

import (
	"context"
	"fmt"

	"github.com/autoops/backend/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// CompletionRequest - 진단 요청 한 건
// JSON이 true면 provider에 JSON object 응답을 강제
type CompletionRequest struct {
	System string
	Prompt string
	JSON   bool
}

// Completer - 진단 서비스가 사용하는 completion 인터페이스
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// OpenAIClient 구조체 정의
type OpenAIClient struct {
	client openai.Client
	model  string
}

// OpenAIClient 객체 생성
func NewOpenAIClient(cfg config.CompletionConfig, opts ...option.RequestOption) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// POST /chat/completions 요청 후 첫 번째 choice의 content 반환
// content가 비어 있으면 빈 문자열 (sentinel 처리는 service 레이어)
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
