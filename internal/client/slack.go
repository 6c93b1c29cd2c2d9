// Slack Incoming Webhook으로 메시지를 전송하는 클라이언트 정의
//
// 환경변수:
//   - SLACK_WEBHOOK_URL: https://hooks.slack.com/services/...
//
// URL이 비어 있으면 전송하지 않음 (알림 비활성화)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/autoops/backend/internal/config"
)

// SlackClient 구조체 정의
type SlackClient struct {
	webhookURL string
	httpClient *http.Client
}

// SlackMessage(메시지 내용) 구조체 정의
type SlackMessage struct {
	Text string `json:"text"`
}

// SlackClient 객체 생성
func NewSlackClient(cfg config.NotifyConfig) *SlackClient {
	return &SlackClient{
		webhookURL: cfg.SlackWebhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Webhook URL 설정 여부 체크
func (c *SlackClient) IsConfigured() bool {
	return c.webhookURL != ""
}

func (c *SlackClient) Name() string {
	return "slack"
}

// Send - Markdown을 Slack mrkdwn으로 변환 후 전송
func (c *SlackClient) Send(ctx context.Context, text string) error {
	if !c.IsConfigured() {
		return nil
	}

	payload, err := json.Marshal(SlackMessage{Text: toSlackMarkdown(text)})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

var headingPattern = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)

// toSlackMarkdown - LLM이 돌려준 Markdown을 Slack mrkdwn으로 변환
//   - **bold** → *bold*
//   - ### heading → *heading*
//
// 코드 블록(```)과 인라인 코드(`)는 그대로 둔다
func toSlackMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			lines[i] = "*" + convertInlineBold(m[1]) + "*"
			continue
		}
		lines[i] = convertInlineBold(line)
	}
	return strings.Join(lines, "\n")
}

// 짝수 번째 조각만 인라인 코드 밖
func convertInlineBold(line string) string {
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = strings.ReplaceAll(parts[i], "**", "*")
	}
	return strings.Join(parts, "`")
}
