package service

import (
	"context"
	"errors"
	"testing"

	"github.com/autoops/backend/internal/client"
	"github.com/autoops/backend/internal/config"
	"github.com/autoops/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	name       string
	configured bool
	err        error
	messages   []string
}

func (m *mockSender) Name() string       { return m.name }
func (m *mockSender) IsConfigured() bool { return m.configured }

func (m *mockSender) Send(_ context.Context, text string) error {
	m.messages = append(m.messages, text)
	return m.err
}

func testNotification() model.Notification {
	return model.Notification{
		AlertID:   "a-1",
		Tenant:    "Acme",
		Message:   "Disk space low on server",
		Diagnosis: "Clear old logs.",
		Action:    model.ActionResult{Kind: model.ActionLinux, Summary: "⚡ EXECUTED: truncate -s 0 /var/log/app.log"},
	}
}

func TestNotifySendsToConfiguredChannels(t *testing.T) {
	slack := &mockSender{name: "slack", configured: true}
	extra := &mockSender{name: "shoutrrr"}

	NewNotifyService("", slack, extra).Notify(context.Background(), testNotification())

	require.Len(t, slack.messages, 1)
	assert.Contains(t, slack.messages[0], "Alert (Acme):** Disk space low on server")
	assert.Contains(t, slack.messages[0], "⚡ EXECUTED: truncate -s 0 /var/log/app.log")
	assert.Empty(t, extra.messages)
}

func TestNotifySwallowsErrors(t *testing.T) {
	failing := &mockSender{name: "slack", configured: true, err: errors.New("500")}
	next := &mockSender{name: "shoutrrr", configured: true}

	assert.NotPanics(t, func() {
		NewNotifyService("{{alert.id}}", failing, next).Notify(context.Background(), testNotification())
	})
	assert.Equal(t, []string{"a-1"}, failing.messages)
	assert.Equal(t, []string{"a-1"}, next.messages)
}

func TestNotifyWithoutWebhookIsNoop(t *testing.T) {
	slack := client.NewSlackClient(config.NotifyConfig{})
	extra := client.NewShoutrrrClient(config.NotifyConfig{})

	assert.NotPanics(t, func() {
		NewNotifyService("", slack, extra).Notify(context.Background(), testNotification())
	})
}
