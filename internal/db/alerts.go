package db

import (
	"context"
	"fmt"

	"github.com/autoops/backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const alertColumns = `
	a.id::text, a.tenant_id::text, t.name, a.source, a.message, a.severity,
	a.status, a.ai_solution, a.metadata, a.created_at, a.updated_at`

// EnsureAlertSchema - raw_alerts 테이블 생성
func (db *Postgres) EnsureAlertSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS raw_alerts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id UUID REFERENCES tenants(id),
			source TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL DEFAULT 'Critical',
			status TEXT NOT NULL DEFAULT 'new',
			ai_solution TEXT,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS raw_alerts_status_idx ON raw_alerts(status)`,
		`CREATE INDEX IF NOT EXISTS raw_alerts_created_at_idx ON raw_alerts(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS raw_alerts_tenant_id_idx ON raw_alerts(tenant_id) WHERE tenant_id IS NOT NULL`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertAlert - 수신한 알림을 status=new로 저장하고 생성된 row 반환 (id는 DB에서 생성)
func (db *Postgres) InsertAlert(ctx context.Context, tenantID *string, payload model.AlertPayload) (*model.Alert, error) {
	metadata := payload.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
		INSERT INTO raw_alerts (tenant_id, source, message, severity, status, metadata, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id::text, tenant_id::text, source, message, severity, status, ai_solution, metadata, created_at, updated_at
	`

	var a model.Alert
	err := db.Pool.QueryRow(ctx, query,
		tenantID,
		payload.Source,
		payload.Message,
		payload.Severity,
		model.AlertStatusNew,
		metadata,
	).Scan(
		&a.ID, &a.TenantID, &a.Source, &a.Message, &a.Severity,
		&a.Status, &a.AISolution, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetPendingAlerts - worker가 처리할 Alert 조회 (오래된 순)
// 잠금 없음: 동시에 두 worker가 같은 Alert를 가져갈 수 있음
func (db *Postgres) GetPendingAlerts(ctx context.Context, filter model.AlertFilter) ([]model.Alert, error) {
	status := filter.Status
	if status == "" {
		status = model.AlertStatusNew
	}

	query := `SELECT ` + alertColumns + `
		FROM raw_alerts a
		LEFT JOIN tenants t ON t.id = a.tenant_id
		WHERE a.status = $1`
	args := []any{status}
	if filter.CriticalOnly {
		query += ` AND a.severity = $2`
		args = append(args, model.SeverityCritical)
	}
	query += ` ORDER BY a.created_at ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAlerts(rows)
}

// GetAlertList - 대시보드용 Alert 목록 (최신순)
func (db *Postgres) GetAlertList(ctx context.Context, filter model.AlertListFilter) ([]model.Alert, error) {
	query := `SELECT ` + alertColumns + `
		FROM raw_alerts a
		LEFT JOIN tenants t ON t.id = a.tenant_id
		WHERE ($1 = '' OR a.status = $1)
		ORDER BY a.created_at DESC
		LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, filter.Status, filter.Limit)
	if err != nil {
		return nil, err
	}
	return collectAlerts(rows)
}

// GetAlertDetail - Alert 상세 조회
// 외부 입력 id는 형식이 틀릴 수 있어 text 비교 (cast 에러 대신 no rows)
func (db *Postgres) GetAlertDetail(ctx context.Context, id string) (*model.Alert, error) {
	query := `SELECT ` + alertColumns + `
		FROM raw_alerts a
		LEFT JOIN tenants t ON t.id = a.tenant_id
		WHERE a.id::text = $1`

	var a model.Alert
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.TenantID, &a.TenantName, &a.Source, &a.Message, &a.Severity,
		&a.Status, &a.AISolution, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAlertStats - 전체 / Critical / 처리 완료 / 대기 개수
func (db *Postgres) GetAlertStats(ctx context.Context) (model.AlertStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE severity = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM raw_alerts`

	var s model.AlertStats
	err := db.Pool.QueryRow(ctx, query, model.SeverityCritical, model.AlertStatusProcessed, model.AlertStatusNew).
		Scan(&s.Total, &s.Critical, &s.Processed, &s.Pending)
	return s, err
}

// MarkAlertProcessed - status와 ai_solution을 한 번에 갱신 (부분 상태 없음)
func (db *Postgres) MarkAlertProcessed(ctx context.Context, id, solution string) error {
	query := `
		UPDATE raw_alerts
		SET status = $2, ai_solution = $3, updated_at = NOW()
		WHERE id = $1::uuid AND status = $4
	`
	tag, err := db.Pool.Exec(ctx, query, id, model.AlertStatusProcessed, solution, model.AlertStatusNew)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s not updated: %w", id, pgx.ErrNoRows)
	}
	return nil
}

func collectAlerts(rows pgx.Rows) ([]model.Alert, error) {
	defer rows.Close()

	var list []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.TenantName, &a.Source, &a.Message, &a.Severity,
			&a.Status, &a.AISolution, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if list == nil {
		list = []model.Alert{}
	}
	return list, nil
}
