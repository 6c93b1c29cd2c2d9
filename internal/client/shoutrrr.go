package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoops/backend/internal/config"
	"github.com/nicholas-fedor/shoutrrr"
)

// shoutrrr.Send는 ctx를 받지 않으므로 URL마다 상한을 둠
const shoutrrrTimeout = 10 * time.Second

// ShoutrrrClient - NOTIFY_URLS에 지정된 추가 채널(discord://, teams://, ...)로 전송
type ShoutrrrClient struct {
	urls    []string
	send    func(url, message string) error
	timeout time.Duration
}

func NewShoutrrrClient(cfg config.NotifyConfig) *ShoutrrrClient {
	return &ShoutrrrClient{
		urls:    cfg.ExtraURLs,
		send:    shoutrrr.Send,
		timeout: shoutrrrTimeout,
	}
}

func (c *ShoutrrrClient) IsConfigured() bool {
	return len(c.urls) > 0
}

func (c *ShoutrrrClient) Name() string {
	return "shoutrrr"
}

// Send - 개별 URL 실패는 모아서 반환 (나머지 URL은 계속 전송)
func (c *ShoutrrrClient) Send(ctx context.Context, text string) error {
	var errs []error
	for i, url := range c.urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.sendOne(ctx, url, text); err != nil {
			errs = append(errs, fmt.Errorf("notify url #%d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// sendOne - timeout 또는 ctx 취소 시 결과를 기다리지 않고 반환
// 남은 전송 goroutine은 결과를 버퍼 채널에 쓰고 종료
func (c *ShoutrrrClient) sendOne(ctx context.Context, url, text string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.send(url, text)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
