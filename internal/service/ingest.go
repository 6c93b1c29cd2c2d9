// 웹훅 Alert 수신 비즈니스 로직 정의
//
// 처리 흐름:
//  1. (tenant 모드) X-API-Key로 tenant 확인 - 조회 결과는 5분간 메모리 캐시
//  2. source, message 필수 검증, severity 기본값 Critical
//  3. status=new로 저장 후 DB가 생성한 id 반환

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autoops/backend/internal/db"
	"github.com/autoops/backend/internal/model"
	"github.com/patrickmn/go-cache"
)

var (
	ErrMissingAPIKey  = errors.New("missing api key")
	ErrInvalidAPIKey  = errors.New("invalid api key")
	ErrInvalidPayload = errors.New("invalid payload")
)

const (
	tenantCacheTTL     = 5 * time.Minute
	tenantCacheCleanup = 10 * time.Minute
)

type alertWriter interface {
	InsertAlert(ctx context.Context, tenantID *string, payload model.AlertPayload) (*model.Alert, error)
}

type tenantReader interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error)
}

// IngestService 구조체 정의
type IngestService struct {
	alerts        alertWriter
	tenants       tenantReader
	requireAPIKey bool
	tenantCache   *cache.Cache
	metrics       *Metrics
}

// IngestService 객체 생성
func NewIngestService(alerts alertWriter, tenants tenantReader, requireAPIKey bool, metrics *Metrics) *IngestService {
	return &IngestService{
		alerts:        alerts,
		tenants:       tenants,
		requireAPIKey: requireAPIKey,
		tenantCache:   cache.New(tenantCacheTTL, tenantCacheCleanup),
		metrics:       metrics,
	}
}

// Ingest - Alert 저장 후 생성된 id 반환
func (s *IngestService) Ingest(ctx context.Context, apiKey string, payload model.AlertPayload) (string, error) {
	var tenantID *string
	if s.requireAPIKey {
		tenant, err := s.resolveTenant(ctx, apiKey)
		if err != nil {
			return "", err
		}
		tenantID = &tenant.ID
	}

	payload.Source = strings.TrimSpace(payload.Source)
	payload.Message = strings.TrimSpace(payload.Message)
	if payload.Source == "" || payload.Message == "" {
		return "", fmt.Errorf("%w: source and message are required", ErrInvalidPayload)
	}
	if strings.TrimSpace(payload.Severity) == "" {
		payload.Severity = model.SeverityCritical
	}

	alert, err := s.alerts.InsertAlert(ctx, tenantID, payload)
	if err != nil {
		return "", err
	}

	s.metrics.alertIngested()
	return alert.ID, nil
}

func (s *IngestService) resolveTenant(ctx context.Context, apiKey string) (*model.Tenant, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if cached, ok := s.tenantCache.Get(apiKey); ok {
		return cached.(*model.Tenant), nil
	}

	tenant, err := s.tenants.GetTenantByAPIKey(ctx, apiKey)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}

	s.tenantCache.SetDefault(apiKey, tenant)
	return tenant, nil
}
