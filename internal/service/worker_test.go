package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/autoops/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAlertStore - status 필터를 실제로 적용하는 메모리 저장소
type fakeAlertStore struct {
	alerts     []model.Alert
	fetchErr   error
	updateErr  error
	fetchCalls int
	updates    []string
}

func (f *fakeAlertStore) GetPendingAlerts(_ context.Context, filter model.AlertFilter) ([]model.Alert, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []model.Alert
	for _, a := range f.alerts {
		if a.Status != filter.Status {
			continue
		}
		if filter.CriticalOnly && a.Severity != model.SeverityCritical {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAlertStore) MarkAlertProcessed(_ context.Context, id, solution string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.alerts {
		if f.alerts[i].ID == id && f.alerts[i].Status == model.AlertStatusNew {
			s := solution
			f.alerts[i].Status = model.AlertStatusProcessed
			f.alerts[i].AISolution = &s
			f.updates = append(f.updates, id)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeAlertStore) find(id string) model.Alert {
	for _, a := range f.alerts {
		if a.ID == id {
			return a
		}
	}
	return model.Alert{}
}

type fakeDiagnoser struct {
	text  string
	fail  map[string]bool
	calls int
}

func (f *fakeDiagnoser) Diagnose(_ context.Context, alert model.Alert) (string, error) {
	f.calls++
	if f.fail[alert.ID] {
		return "", errors.New("completion unavailable")
	}
	return f.text, nil
}

type fakeRemediator struct {
	calls int
}

func (f *fakeRemediator) Remediate(_ context.Context, alert model.Alert, diagnosis string) model.ActionResult {
	f.calls++
	kind := Classify(alert.Message, diagnosis)
	if kind == model.ActionLinux {
		return model.ActionResult{Kind: kind, Summary: linuxAction(diagnosis)}
	}
	return model.ActionResult{Kind: kind, Summary: noActionSummary}
}

type fakeNotifier struct {
	sent []model.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n model.Notification) {
	f.sent = append(f.sent, n)
}

func newAlert(id, message string) model.Alert {
	return model.Alert{
		ID:       id,
		Source:   "db",
		Message:  message,
		Severity: model.SeverityCritical,
		Status:   model.AlertStatusNew,
	}
}

func TestWorkerRunOnceProcessesDiskSpaceAlert(t *testing.T) {
	store := &fakeAlertStore{alerts: []model.Alert{newAlert("a-1", "Disk space low on server")}}
	diag := &fakeDiagnoser{text: "Clear old log files to free disk."}
	notifier := &fakeNotifier{}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	w := NewWorker(store, diag, &fakeRemediator{}, notifier, metrics, false)
	processed, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	got := store.find("a-1")
	assert.Equal(t, model.AlertStatusProcessed, got.Status)
	require.NotNil(t, got.AISolution)
	assert.Contains(t, *got.AISolution, "Clear old log files to free disk.")
	assert.Contains(t, *got.AISolution, "[System Log]: ⚡ EXECUTED: truncate -s 0 /var/log/app.log")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.UnknownTenant, notifier.sent[0].Tenant)
	assert.Equal(t, model.ActionLinux, notifier.sent[0].Action.Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.processed.WithLabelValues("linux")))
}

func TestWorkerRunOnceEmptyFetch(t *testing.T) {
	store := &fakeAlertStore{}
	diag := &fakeDiagnoser{}
	rem := &fakeRemediator{}
	notifier := &fakeNotifier{}

	w := NewWorker(store, diag, rem, notifier, nil, false)
	processed, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, store.fetchCalls)
	assert.Zero(t, diag.calls)
	assert.Zero(t, rem.calls)
	assert.Empty(t, store.updates)
	assert.Empty(t, notifier.sent)
}

func TestWorkerRunOnceDiagnosisFailureLeavesAlertUnchanged(t *testing.T) {
	store := &fakeAlertStore{alerts: []model.Alert{
		newAlert("a-1", "CPU high"),
		newAlert("a-2", "Service down"),
	}}
	diag := &fakeDiagnoser{text: "Restart the service.", fail: map[string]bool{"a-1": true}}
	rem := &fakeRemediator{}
	notifier := &fakeNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())

	w := NewWorker(store, diag, rem, notifier, metrics, false)
	processed, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	failed := store.find("a-1")
	assert.Equal(t, model.AlertStatusNew, failed.Status)
	assert.Nil(t, failed.AISolution)

	ok := store.find("a-2")
	assert.Equal(t, model.AlertStatusProcessed, ok.Status)
	assert.NotNil(t, ok.AISolution)

	assert.Equal(t, 1, rem.calls)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "a-2", notifier.sent[0].AlertID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.diagnosisFailures))
}

func TestWorkerRunOnceSkipsProcessedAlerts(t *testing.T) {
	store := &fakeAlertStore{alerts: []model.Alert{newAlert("a-1", "Disk space low")}}
	diag := &fakeDiagnoser{text: "clear logs"}

	w := NewWorker(store, diag, &fakeRemediator{}, nil, nil, false)
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	processed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, diag.calls)
	assert.Equal(t, []string{"a-1"}, store.updates)
}

func TestWorkerRunOnceUpdateFailureSkipsNotification(t *testing.T) {
	store := &fakeAlertStore{
		alerts:    []model.Alert{newAlert("a-1", "Disk space low")},
		updateErr: errors.New("connection reset"),
	}
	notifier := &fakeNotifier{}

	w := NewWorker(store, &fakeDiagnoser{text: "clear logs"}, &fakeRemediator{}, notifier, nil, false)
	processed, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, model.AlertStatusNew, store.find("a-1").Status)
}

func TestWorkerRunOnceCriticalOnly(t *testing.T) {
	warning := newAlert("a-2", "Disk space low")
	warning.Severity = "Warning"
	store := &fakeAlertStore{alerts: []model.Alert{newAlert("a-1", "Disk space low"), warning}}

	w := NewWorker(store, &fakeDiagnoser{text: "clear logs"}, &fakeRemediator{}, nil, nil, true)
	processed, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, model.AlertStatusNew, store.find("a-2").Status)
}

func TestWorkerRunOnceFetchError(t *testing.T) {
	store := &fakeAlertStore{fetchErr: errors.New("db down")}
	diag := &fakeDiagnoser{}

	w := NewWorker(store, diag, &fakeRemediator{}, nil, nil, false)
	_, err := w.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Zero(t, diag.calls)
}

func TestWorkerRunRetriesAfterFetchErrorAndStops(t *testing.T) {
	store := &fakeAlertStore{fetchErr: errors.New("db down")}
	w := NewWorker(store, &fakeDiagnoser{}, &fakeRemediator{}, nil, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, 10*time.Millisecond)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	assert.GreaterOrEqual(t, store.fetchCalls, 2)
}

type panickingRemediator struct {
	panicOn string
	calls   int
}

func (p *panickingRemediator) Remediate(_ context.Context, alert model.Alert, diagnosis string) model.ActionResult {
	p.calls++
	if alert.ID == p.panicOn {
		panic("nil directory response")
	}
	return model.ActionResult{Kind: model.ActionLinux, Summary: linuxAction(diagnosis)}
}

type panickingStore struct {
	fakeAlertStore
}

func (p *panickingStore) GetPendingAlerts(context.Context, model.AlertFilter) ([]model.Alert, error) {
	p.fetchCalls++
	panic("driver bug")
}

func TestWorkerRunOncePanicSkipsOnlyThatAlert(t *testing.T) {
	store := &fakeAlertStore{alerts: []model.Alert{
		newAlert("a-1", "Disk space low"),
		newAlert("a-2", "Disk space low"),
	}}
	rem := &panickingRemediator{panicOn: "a-1"}
	notifier := &fakeNotifier{}

	w := NewWorker(store, &fakeDiagnoser{text: "clear logs"}, rem, notifier, nil, false)

	var processed int
	var err error
	require.NotPanics(t, func() {
		processed, err = w.RunOnce(context.Background())
	})

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 2, rem.calls)
	assert.Equal(t, model.AlertStatusNew, store.find("a-1").Status)
	assert.Nil(t, store.find("a-1").AISolution)
	assert.Equal(t, model.AlertStatusProcessed, store.find("a-2").Status)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "a-2", notifier.sent[0].AlertID)
}

func TestWorkerRunSurvivesPanics(t *testing.T) {
	tests := []struct {
		name  string
		store pendingAlertStore
	}{
		{
			name:  "panic in remediation",
			store: &fakeAlertStore{alerts: []model.Alert{newAlert("a-1", "Disk space low")}},
		},
		{
			name:  "panic in fetch",
			store: &panickingStore{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rem := &panickingRemediator{panicOn: "a-1"}
			w := NewWorker(tt.store, &fakeDiagnoser{text: "clear logs"}, rem, nil, nil, false)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- fmt.Errorf("worker panicked: %v", r)
					}
				}()
				done <- w.Run(ctx, 10*time.Millisecond)
			}()

			time.Sleep(100 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(time.Second):
				t.Fatal("worker did not stop after cancel")
			}

			switch s := tt.store.(type) {
			case *fakeAlertStore:
				assert.GreaterOrEqual(t, s.fetchCalls, 2)
				assert.GreaterOrEqual(t, rem.calls, 2)
				assert.Equal(t, model.AlertStatusNew, s.find("a-1").Status)
			case *panickingStore:
				assert.GreaterOrEqual(t, s.fetchCalls, 2)
			}
		})
	}
}
