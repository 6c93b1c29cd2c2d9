// 웹훅으로 수집되는 Alert, Tenant 구조체 정의
// handler, service, db, client 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import (
	"encoding/json"
	"time"
)

const (
	AlertStatusNew       = "new"
	AlertStatusProcessed = "processed"

	SeverityCritical = "Critical"

	UnknownTenant = "Unknown Tenant"
)

// AlertPayload - POST /webhook 요청 본문
// source, message는 필수, severity 미지정 시 Critical
type AlertPayload struct {
	Source   string         `json:"source"`
	Message  string         `json:"message"`
	Severity string         `json:"severity"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Alert - raw_alerts 테이블의 한 행
type Alert struct {
	ID         string          `json:"id"`
	TenantID   *string         `json:"tenant_id"`
	TenantName *string         `json:"tenant_name,omitempty"`
	Source     string          `json:"source"`
	Message    string          `json:"message"`
	Severity   string          `json:"severity"`
	Status     string          `json:"status"`
	AISolution *string         `json:"ai_solution"`
	Metadata   json.RawMessage `json:"metadata"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DisplayTenant - tenant join 결과가 없으면 Unknown Tenant
func (a Alert) DisplayTenant() string {
	if a.TenantName == nil || *a.TenantName == "" {
		return UnknownTenant
	}
	return *a.TenantName
}

// AlertFilter - worker fetch 조건
type AlertFilter struct {
	Status       string
	CriticalOnly bool
}

// AlertListFilter - 조회 API 조건
type AlertListFilter struct {
	Status string
	Limit  int
}

// AlertStats - 대시보드 상단 지표
type AlertStats struct {
	Total     int64 `json:"total"`
	Critical  int64 `json:"critical"`
	Processed int64 `json:"processed"`
	Pending   int64 `json:"pending"`
}

// Tenant - 멀티 테넌트 스코프 (API key로 webhook 호출자 식별)
type Tenant struct {
	ID        string
	Name      string
	APIKey    string
	CreatedAt time.Time
}
