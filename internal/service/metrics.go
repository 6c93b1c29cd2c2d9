package service

import (
	"github.com/autoops/backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - worker/ingest 처리 카운터
// nil Metrics도 안전하게 호출 가능
type Metrics struct {
	ingested          prometheus.Counter
	processed         *prometheus.CounterVec
	diagnosisFailures prometheus.Counter
	updateFailures    prometheus.Counter
}

// NewMetrics - registry에 카운터 등록
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoops",
			Name:      "alerts_ingested_total",
			Help:      "Number of alerts accepted by the webhook endpoint.",
		}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autoops",
			Name:      "alerts_processed_total",
			Help:      "Number of alerts marked processed, by action kind.",
		}, []string{"action"}),
		diagnosisFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoops",
			Name:      "diagnosis_failures_total",
			Help:      "Number of alerts skipped because diagnosis failed.",
		}),
		updateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoops",
			Name:      "alert_update_failures_total",
			Help:      "Number of alerts whose processed update failed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ingested, m.processed, m.diagnosisFailures, m.updateFailures)
	}
	return m
}

func (m *Metrics) alertIngested() {
	if m == nil {
		return
	}
	m.ingested.Inc()
}

func (m *Metrics) alertProcessed(kind model.ActionKind) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) diagnosisFailed() {
	if m == nil {
		return
	}
	m.diagnosisFailures.Inc()
}

func (m *Metrics) updateFailed() {
	if m == nil {
		return
	}
	m.updateFailures.Inc()
}
