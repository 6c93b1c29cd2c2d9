// Alert 진단 요청 비즈니스 로직 정의
//
// 처리 흐름:
//  1. source, message, severity, metadata로 프롬프트 구성
//  2. Completer에 1회 요청 (batch, cache, retry 없음)
//  3. JSON 모드면 4개 필드를 파싱해 사람이 읽을 수 있는 텍스트로 변환
//  4. 응답이 비어 있으면 sentinel 문자열로 대체

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/autoops/backend/internal/client"
	"github.com/autoops/backend/internal/model"
)

const NoSolutionProvided = "No solution provided by AI"

const structuredSystemPrompt = `You are a Senior Site Reliability Engineer (SRE).
Your job is to analyze infrastructure alerts.

Output Format: return ONLY valid JSON with these keys:
{
    "root_cause": "Brief explanation of what went wrong",
    "severity_score": 1-10,
    "suggested_fix_command": "The exact bash command to fix it",
    "risk_assessment": "Is this safe to run automatically? (Low/High)"
}`

// DiagnosisService 구조체 정의
type DiagnosisService struct {
	completer client.Completer
	jsonMode  bool
	timeout   time.Duration
}

// DiagnosisService 객체 생성
func NewDiagnosisService(completer client.Completer, jsonMode bool, timeout time.Duration) *DiagnosisService {
	return &DiagnosisService{
		completer: completer,
		jsonMode:  jsonMode,
		timeout:   timeout,
	}
}

// Diagnose - Alert 하나에 대한 진단 텍스트 반환
// 에러가 나면 호출 측은 해당 Alert 처리만 중단
func (s *DiagnosisService) Diagnose(ctx context.Context, alert model.Alert) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := client.CompletionRequest{Prompt: buildFreeTextPrompt(alert)}
	if s.jsonMode {
		req = client.CompletionRequest{
			System: structuredSystemPrompt,
			Prompt: buildStructuredPrompt(alert),
			JSON:   true,
		}
	}

	text, err := s.completer.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("diagnosis failed (alert_id=%s): %w", alert.ID, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return NoSolutionProvided, nil
	}
	if s.jsonMode {
		return renderStructured(text), nil
	}
	return text, nil
}

func buildFreeTextPrompt(alert model.Alert) string {
	var b strings.Builder
	b.WriteString("Analyze this server alert and suggest a 1-sentence Linux command to fix it.\n\n")
	fmt.Fprintf(&b, "Alert Source: %s\n", alert.Source)
	fmt.Fprintf(&b, "Severity: %s\n", alert.Severity)
	fmt.Fprintf(&b, "Message: %s\n", alert.Message)
	if meta := metadataString(alert.Metadata); meta != "" {
		fmt.Fprintf(&b, "Metadata: %s\n", meta)
	}
	return b.String()
}

func buildStructuredPrompt(alert model.Alert) string {
	var b strings.Builder
	b.WriteString("Here is the alert log I received:\n")
	fmt.Fprintf(&b, "Source: %s\n", alert.Source)
	fmt.Fprintf(&b, "Severity: %s\n", alert.Severity)
	fmt.Fprintf(&b, "Message: %s\n", alert.Message)
	fmt.Fprintf(&b, "Metadata: %s\n", metadataOrNone(alert.Metadata))
	b.WriteString("\nAnalyze this now.")
	return b.String()
}

func metadataString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "{}" || trimmed == "null" {
		return ""
	}
	return trimmed
}

func metadataOrNone(raw json.RawMessage) string {
	if meta := metadataString(raw); meta != "" {
		return meta
	}
	return "None"
}

// renderStructured - JSON 진단을 텍스트로 변환, 파싱 실패 시 원문 그대로
func renderStructured(text string) string {
	var d model.Diagnosis
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return text
	}
	if d.RootCause == "" && d.SuggestedFixCommand == "" {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Root Cause: %s\n", d.RootCause)
	if d.SeverityScore > 0 {
		fmt.Fprintf(&b, "Severity Score: %d/10\n", clampScore(int(d.SeverityScore)))
	}
	if d.SuggestedFixCommand != "" {
		fmt.Fprintf(&b, "Suggested Fix: `%s`\n", d.SuggestedFixCommand)
	}
	if d.RiskAssessment != "" {
		fmt.Fprintf(&b, "Risk: %s", d.RiskAssessment)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clampScore(score int) int {
	switch {
	case score < 1:
		return 1
	case score > 10:
		return 10
	default:
		return score
	}
}
