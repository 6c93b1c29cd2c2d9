// 자동 조치 분류 및 실행
//
// 분류 우선순위 (첫 매칭 적용):
//  1. onboarding: message에 onboard / new user / hire (단어 시작 기준)
//  2. device_count: message에 intune / device count
//  3. linux: diagnosis에 restart, 또는 disk space / clear
//  4. none: 수동 확인 필요
//
// 조치 실패도 결과 문자열로 반환하며 에러를 올리지 않는다.

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/autoops/backend/internal/client"
	"github.com/autoops/backend/internal/model"
)

const (
	defaultEmployeeName = "New Employee"
	noActionSummary     = "No automated action taken (manual review required)"
)

// SafeCommands - 실행이 허용된 명령어 템플릿 (시뮬레이션만 수행)
var SafeCommands = map[string]string{
	"restart_service": "sudo systemctl restart application",
	"clear_logs":      "truncate -s 0 /var/log/app.log",
	"clear_cache":     "redis-cli FLUSHALL",
}

var (
	// 사용자 생성 조치는 단어 시작 위치에서만 매칭 ("/shire" 제외)
	onboardingPattern   = regexp.MustCompile(`\b(onboard|new\s+user|hire)`)
	deviceCountKeywords = []string{"intune", "device count"}
	diskKeywords        = []string{"disk space", "clear"}
)

// directoryClient - 사용자 생성/디바이스 조회용 디렉터리 인터페이스
type directoryClient interface {
	DefaultDomain(ctx context.Context) (string, error)
	CreateUser(ctx context.Context, user client.NewUser) (*client.CreatedUser, error)
	CountManagedDevices(ctx context.Context) (int, error)
}

// Classify - message와 diagnosis로 조치 분류 결정
func Classify(message, diagnosis string) model.ActionKind {
	msg := strings.ToLower(message)
	diag := strings.ToLower(diagnosis)

	switch {
	case onboardingPattern.MatchString(msg):
		return model.ActionOnboarding
	case containsAny(msg, deviceCountKeywords):
		return model.ActionDeviceCount
	case strings.Contains(diag, "restart"), containsAny(diag, diskKeywords):
		return model.ActionLinux
	default:
		return model.ActionNone
	}
}

// RemediationService 구조체 정의
type RemediationService struct {
	directory directoryClient
	password  func() (string, error)
}

// RemediationService 객체 생성
func NewRemediationService(directory directoryClient) *RemediationService {
	return &RemediationService{
		directory: directory,
		password:  GeneratePassword,
	}
}

// Remediate - 분류 후 해당 조치 실행
func (s *RemediationService) Remediate(ctx context.Context, alert model.Alert, diagnosis string) model.ActionResult {
	kind := Classify(alert.Message, diagnosis)

	var summary string
	switch kind {
	case model.ActionOnboarding:
		summary = s.onboardUser(ctx, ExtractName(alert.Message))
	case model.ActionDeviceCount:
		summary = s.countDevices(ctx)
	case model.ActionLinux:
		summary = linuxAction(diagnosis)
	default:
		summary = noActionSummary
	}

	log.Printf("Remediation result (alert_id=%s, action=%s): %s", alert.ID, kind, redactPassword(summary))
	return model.ActionResult{Kind: kind, Summary: summary}
}

func (s *RemediationService) onboardUser(ctx context.Context, name string) string {
	if s.directory == nil {
		return "❌ Connection Failed: directory client not configured"
	}

	domain, err := s.directory.DefaultDomain(ctx)
	if err != nil {
		return directoryFailure(err)
	}

	upn := PrincipalName(name, domain)
	password, err := s.password()
	if err != nil {
		return fmt.Sprintf("❌ Connection Failed: %v", err)
	}

	_, err = s.directory.CreateUser(ctx, client.NewUser{
		DisplayName:       name,
		MailNickname:      strings.SplitN(upn, "@", 2)[0],
		UserPrincipalName: upn,
		Password:          password,
	})
	if err != nil {
		var graphErr *client.GraphError
		if errors.As(err, &graphErr) && strings.Contains(strings.ToLower(graphErrorText(graphErr)), "already exists") {
			return fmt.Sprintf("⚠️ User %s already exists", upn)
		}
		return directoryFailure(err)
	}

	return fmt.Sprintf("✅ User Created: %s | Temporary Password: %s", upn, password)
}

func (s *RemediationService) countDevices(ctx context.Context) string {
	if s.directory == nil {
		return "❌ Connection Failed: directory client not configured"
	}

	count, err := s.directory.CountManagedDevices(ctx)
	if err != nil {
		var graphErr *client.GraphError
		if errors.As(err, &graphErr) {
			return fmt.Sprintf("❌ API Error: %d - %s", graphErr.StatusCode, graphErr.Body)
		}
		return fmt.Sprintf("❌ Connection Failed: %v", err)
	}
	return fmt.Sprintf("📱 Intune Device Count: %d", count)
}

func linuxAction(diagnosis string) string {
	diag := strings.ToLower(diagnosis)
	if strings.Contains(diag, "restart") {
		return "⚡ EXECUTED: " + SafeCommands["restart_service"]
	}
	return "⚡ EXECUTED: " + SafeCommands["clear_logs"]
}

// ExtractName - 마지막 ':' 뒤의 텍스트, 없으면 기본 이름
func ExtractName(message string) string {
	idx := strings.LastIndex(message, ":")
	if idx < 0 {
		return defaultEmployeeName
	}
	name := strings.TrimSpace(message[idx+1:])
	if name == "" {
		return defaultEmployeeName
	}
	return name
}

// PrincipalName - "Jane Smith" + "corp.com" -> "jane.smith@corp.com"
func PrincipalName(name, domain string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	return local + "@" + domain
}

func directoryFailure(err error) string {
	var graphErr *client.GraphError
	if errors.As(err, &graphErr) {
		return fmt.Sprintf("❌ Azure Error: %s", graphErrorText(graphErr))
	}
	return fmt.Sprintf("❌ Connection Failed: %v", err)
}

func graphErrorText(e *client.GraphError) string {
	if e.Message != "" {
		return e.Message
	}
	return e.Body
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// 로그에는 임시 비밀번호를 남기지 않음
func redactPassword(summary string) string {
	if idx := strings.Index(summary, "| Temporary Password:"); idx >= 0 {
		return summary[:idx] + "| Temporary Password: ****"
	}
	return summary
}
