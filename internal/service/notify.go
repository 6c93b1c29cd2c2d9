package service

import (
	"context"
	"log"

	"github.com/autoops/backend/internal/model"
	"github.com/autoops/backend/internal/template"
)

// notificationSender - 채팅 채널 전송 인터페이스 (Slack, shoutrrr)
type notificationSender interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, text string) error
}

// NotifyService - 처리 완료 알림을 설정된 채널로 전송
// 전송 실패는 로그만 남기고 호출 측에 전달하지 않음
type NotifyService struct {
	senders  []notificationSender
	template string
}

func NewNotifyService(tmpl string, senders ...notificationSender) *NotifyService {
	return &NotifyService{
		senders:  senders,
		template: tmpl,
	}
}

func (s *NotifyService) Notify(ctx context.Context, n model.Notification) {
	text := template.RenderNotification(s.template, template.NotificationDataFromModel(n))

	for _, sender := range s.senders {
		if sender == nil || !sender.IsConfigured() {
			continue
		}
		if err := sender.Send(ctx, text); err != nil {
			log.Printf("Failed to send notification (alert_id=%s, channel=%s): %v", n.AlertID, sender.Name(), err)
			continue
		}
		log.Printf("Notification sent (alert_id=%s, channel=%s)", n.AlertID, sender.Name())
	}
}
