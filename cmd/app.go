package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/autoops/backend/internal/client"
	"github.com/autoops/backend/internal/config"
	"github.com/autoops/backend/internal/db"
	"github.com/autoops/backend/internal/handler"
	"github.com/autoops/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// app - 명령 실행에 필요한 공통 의존성
type app struct {
	cfg      config.Config
	store    *db.Postgres
	registry *prometheus.Registry
	metrics  *service.Metrics
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		store:    store,
		registry: registry,
		metrics:  service.NewMetrics(registry),
	}, nil
}

func (a *app) Close() {
	a.store.Pool.Close()
}

func (a *app) newServer() *http.Server {
	router := handler.NewRouter(handler.Routes{
		Webhook:        handler.NewWebhookHandler(service.NewIngestService(a.store, a.store, a.cfg.Server.RequireAPIKey, a.metrics)),
		Alerts:         handler.NewAlertHandler(service.NewAlertQueryService(a.store)),
		Metrics:        promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		AllowedOrigins: a.cfg.Server.CORSAllowedOrigins,
	})

	return &http.Server{
		Addr:    ":" + a.cfg.Server.Port,
		Handler: router,
	}
}

func (a *app) newWorker(ctx context.Context, criticalOnly bool) (*service.Worker, error) {
	completer, err := newCompleter(ctx, a.cfg.Completion)
	if err != nil {
		return nil, err
	}

	diagnosis := service.NewDiagnosisService(completer, a.cfg.Completion.JSONMode, a.cfg.Completion.Timeout)
	remediation := service.NewRemediationService(client.NewGraphClient(a.cfg.Directory))

	slack := client.NewSlackClient(a.cfg.Notify)
	if !slack.IsConfigured() {
		log.Printf("SLACK_WEBHOOK_URL not set, Slack notifications disabled")
	}
	notify := service.NewNotifyService(a.cfg.Notify.Template, slack, client.NewShoutrrrClient(a.cfg.Notify))

	return service.NewWorker(a.store, diagnosis, remediation, notify, a.metrics, criticalOnly), nil
}

func newCompleter(ctx context.Context, cfg config.CompletionConfig) (client.Completer, error) {
	switch cfg.Provider {
	case "openai":
		return client.NewOpenAIClient(cfg)
	case "gemini":
		return client.NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown COMPLETION_PROVIDER %q", config.ErrMissingConfig, cfg.Provider)
	}
}
