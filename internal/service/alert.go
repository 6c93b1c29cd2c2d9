package service

import (
	"context"
	"errors"

	"github.com/autoops/backend/internal/db"
	"github.com/autoops/backend/internal/model"
)

var ErrAlertNotFound = errors.New("alert not found")

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type alertReader interface {
	GetAlertList(ctx context.Context, filter model.AlertListFilter) ([]model.Alert, error)
	GetAlertDetail(ctx context.Context, id string) (*model.Alert, error)
	GetAlertStats(ctx context.Context) (model.AlertStats, error)
}

// AlertQueryService - 대시보드용 Alert 조회
type AlertQueryService struct {
	db alertReader
}

func NewAlertQueryService(database alertReader) *AlertQueryService {
	return &AlertQueryService{db: database}
}

// GetAlertList - 최신순 목록, limit은 1~1000 범위로 보정
func (s *AlertQueryService) GetAlertList(ctx context.Context, status string, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	alerts, err := s.db.GetAlertList(ctx, model.AlertListFilter{Status: status, Limit: limit})
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, nil
}

func (s *AlertQueryService) GetAlertDetail(ctx context.Context, id string) (*model.Alert, error) {
	alert, err := s.db.GetAlertDetail(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

func (s *AlertQueryService) GetAlertStats(ctx context.Context) (model.AlertStats, error) {
	return s.db.GetAlertStats(ctx)
}
