// 미처리 Alert 자동 조치 워커
//
// 처리 흐름 (pass 1회):
//  1. status=new Alert 조회 (created_at 오름차순)
//  2. Alert마다 AI 진단 요청 - 실패 시 해당 Alert만 건너뜀 (status=new 유지)
//  3. 분류 후 자동 조치 실행 - 실패도 결과 문자열로 기록
//  4. status=processed, ai_solution 동시 업데이트 - 실패 시 알림 생략
//  5. 채팅 알림 (best-effort)

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/autoops/backend/internal/model"
	"github.com/google/uuid"
)

const systemLogSeparator = "\n\n[System Log]: "

type pendingAlertStore interface {
	GetPendingAlerts(ctx context.Context, filter model.AlertFilter) ([]model.Alert, error)
	MarkAlertProcessed(ctx context.Context, id, solution string) error
}

type diagnoser interface {
	Diagnose(ctx context.Context, alert model.Alert) (string, error)
}

type remediator interface {
	Remediate(ctx context.Context, alert model.Alert, diagnosis string) model.ActionResult
}

type notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// Worker 구조체 정의
type Worker struct {
	store        pendingAlertStore
	diagnoser    diagnoser
	remediator   remediator
	notifier     notifier
	metrics      *Metrics
	criticalOnly bool
}

// Worker 객체 생성
func NewWorker(store pendingAlertStore, diagnoser diagnoser, remediator remediator, notifier notifier, metrics *Metrics, criticalOnly bool) *Worker {
	return &Worker{
		store:        store,
		diagnoser:    diagnoser,
		remediator:   remediator,
		notifier:     notifier,
		metrics:      metrics,
		criticalOnly: criticalOnly,
	}
}

// RunOnce - pass 1회 실행, 처리 완료(processed)된 Alert 수 반환
// 조회 실패만 에러로 반환하고 Alert별 실패는 로그로 처리
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	passID := uuid.NewString()

	alerts, err := w.store.GetPendingAlerts(ctx, model.AlertFilter{
		Status:       model.AlertStatusNew,
		CriticalOnly: w.criticalOnly,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending alerts: %w", err)
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	log.Printf("Processing %d pending alerts (pass_id=%s)", len(alerts), passID)

	processed := 0
	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if w.processAlert(ctx, alert) {
			processed++
		}
	}

	log.Printf("Pass finished (pass_id=%s, processed=%d, skipped=%d)", passID, processed, len(alerts)-processed)
	return processed, nil
}

// Run - interval 간격으로 RunOnce 반복, ctx 취소 시 종료
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	log.Printf("Worker started (interval=%s, critical_only=%t)", interval, w.criticalOnly)

	for {
		if err := w.runPass(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("Worker pass failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Printf("Worker stopped")
			return nil
		case <-time.After(interval):
		}
	}

	log.Printf("Worker stopped")
	return nil
}

// runPass - continuous 모드용, pass 밖으로 나온 panic은 에러로 변환
func (w *Worker) runPass(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during pass: %v", r)
		}
	}()

	_, err = w.RunOnce(ctx)
	return err
}

// processAlert - Alert 1건 처리, panic도 해당 Alert 실패로 처리 (status=new 유지)
// 업데이트 이후(알림 단계) panic이면 processed로 집계
func (w *Worker) processAlert(ctx context.Context, alert model.Alert) (ok bool) {
	updated := false
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while processing alert (alert_id=%s): %v", alert.ID, r)
			ok = updated
		}
	}()

	diagnosis, err := w.diagnoser.Diagnose(ctx, alert)
	if err != nil {
		log.Printf("Skipping alert, diagnosis failed (alert_id=%s): %v", alert.ID, err)
		w.metrics.diagnosisFailed()
		return false
	}

	action := w.remediator.Remediate(ctx, alert, diagnosis)
	solution := diagnosis + systemLogSeparator + action.Summary

	if err := w.store.MarkAlertProcessed(ctx, alert.ID, solution); err != nil {
		log.Printf("Failed to update alert (alert_id=%s): %v", alert.ID, err)
		w.metrics.updateFailed()
		return false
	}
	updated = true
	w.metrics.alertProcessed(action.Kind)

	if w.notifier != nil {
		w.notifier.Notify(ctx, model.Notification{
			AlertID:   alert.ID,
			Tenant:    alert.DisplayTenant(),
			Source:    alert.Source,
			Severity:  alert.Severity,
			Message:   alert.Message,
			Diagnosis: diagnosis,
			Action:    action,
		})
	}
	return true
}
