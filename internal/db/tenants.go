package db

import (
	"context"

	"github.com/autoops/backend/internal/model"
)

// EnsureTenantSchema - tenants 테이블 생성
// tenant 생성/관리는 이 서비스 범위 밖이므로 조회만 제공
func (db *Postgres) EnsureTenantSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			api_key TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// GetTenantByAPIKey - X-API-Key로 tenant 조회 (없으면 pgx.ErrNoRows)
func (db *Postgres) GetTenantByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	query := `
		SELECT id::text, name, api_key, created_at
		FROM tenants
		WHERE api_key = $1
	`

	var t model.Tenant
	err := db.Pool.QueryRow(ctx, query, apiKey).Scan(&t.ID, &t.Name, &t.APIKey, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
