// Package template provides notification message rendering.
//
// 지원하는 변수 형식:
//
//	{{tenant.name}}
//
//	{{alert.id}}, {{alert.source}}, {{alert.severity}}, {{alert.message}}
//
//	{{diagnosis}}, {{action.kind}}, {{action.result}}
package template

import (
	"strings"

	"github.com/autoops/backend/internal/model"
)

// DefaultNotification - NOTIFY_TEMPLATE 미설정 시 사용
const DefaultNotification = "🚨 **Alert ({{tenant.name}}):** {{alert.message}}\n" +
	"🧠 **AI Analysis:** {{diagnosis}}\n" +
	"🛡️ **Auto-Fix:** {{action.result}}"

// NotificationData - 템플릿 렌더링에 사용할 데이터
type NotificationData struct {
	AlertID      string
	Tenant       string
	Source       string
	Severity     string
	Message      string
	Diagnosis    string
	ActionKind   string
	ActionResult string
}

// NotificationDataFromModel - model.Notification에서 NotificationData 생성
func NotificationDataFromModel(n model.Notification) NotificationData {
	tenant := n.Tenant
	if tenant == "" {
		tenant = model.UnknownTenant
	}
	return NotificationData{
		AlertID:      n.AlertID,
		Tenant:       tenant,
		Source:       n.Source,
		Severity:     n.Severity,
		Message:      n.Message,
		Diagnosis:    n.Diagnosis,
		ActionKind:   string(n.Action.Kind),
		ActionResult: n.Action.Summary,
	}
}

// RenderNotification - 템플릿의 변수를 실제 값으로 치환
//
// body가 비어 있으면 DefaultNotification 사용
func RenderNotification(body string, data NotificationData) string {
	if strings.TrimSpace(body) == "" {
		body = DefaultNotification
	}

	return strings.NewReplacer(
		"{{tenant.name}}", data.Tenant,
		"{{alert.id}}", data.AlertID,
		"{{alert.source}}", data.Source,
		"{{alert.severity}}", data.Severity,
		"{{alert.message}}", data.Message,
		"{{diagnosis}}", data.Diagnosis,
		"{{action.kind}}", data.ActionKind,
		"{{action.result}}", data.ActionResult,
	).Replace(body)
}
