package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingConfig = errors.New("missing required config")

type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	Completion CompletionConfig
	Directory  DirectoryConfig
	Notify     NotifyConfig
	Worker     WorkerConfig
}

type ServerConfig struct {
	Port          string
	RequireAPIKey bool

	// 대시보드 조회 API용
	CORSAllowedOrigins []string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// CompletionConfig - LLM 진단 설정
// Provider: openai(기본) 또는 gemini
type CompletionConfig struct {
	Provider     string
	OpenAIAPIKey string
	GeminiAPIKey string
	Model        string
	JSONMode     bool
	Timeout      time.Duration
}

// DirectoryConfig - Azure AD(Microsoft Graph) client credentials
type DirectoryConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// NotifyConfig - Slack webhook이 비어 있으면 알림 비활성화
type NotifyConfig struct {
	SlackWebhookURL string
	ExtraURLs       []string
	Template        string
}

type WorkerConfig struct {
	Interval     time.Duration
	CriticalOnly bool
}

func Load() Config {
	provider := strings.ToLower(getenv("COMPLETION_PROVIDER", "openai"))
	return Config{
		Server: ServerConfig{
			Port:               getenv("PORT", "8080"),
			RequireAPIKey:      getbool("REQUIRE_API_KEY", false),
			CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Completion: CompletionConfig{
			Provider:     provider,
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			GeminiAPIKey: os.Getenv("AI_API_KEY"),
			Model:        getenv("COMPLETION_MODEL", defaultModel(provider)),
			JSONMode:     getbool("COMPLETION_JSON_MODE", false),
			Timeout:      getduration("COMPLETION_TIMEOUT", 60*time.Second),
		},
		Directory: DirectoryConfig{
			TenantID:     os.Getenv("AZURE_TENANT_ID"),
			ClientID:     os.Getenv("AZURE_CLIENT_ID"),
			ClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
		},
		Notify: NotifyConfig{
			SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			ExtraURLs:       splitList(os.Getenv("NOTIFY_URLS")),
			Template:        os.Getenv("NOTIFY_TEMPLATE"),
		},
		Worker: WorkerConfig{
			Interval:     getduration("WORKER_INTERVAL", 5*time.Second),
			CriticalOnly: getbool("WORKER_CRITICAL_ONLY", false),
		},
	}
}

// ValidateServer - ingestion 서버 기동에 필요한 설정 확인
func (c Config) ValidateServer() error {
	return c.Postgres.validate()
}

// ValidateWorker - worker 기동에 필요한 설정 확인 (webhook URL만 선택)
func (c Config) ValidateWorker() error {
	if err := c.Postgres.validate(); err != nil {
		return err
	}

	var missing []string
	switch c.Completion.Provider {
	case "openai":
		if c.Completion.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "gemini":
		if c.Completion.GeminiAPIKey == "" {
			missing = append(missing, "AI_API_KEY")
		}
	default:
		return fmt.Errorf("%w: unknown COMPLETION_PROVIDER %q", ErrMissingConfig, c.Completion.Provider)
	}
	if c.Directory.TenantID == "" {
		missing = append(missing, "AZURE_TENANT_ID")
	}
	if c.Directory.ClientID == "" {
		missing = append(missing, "AZURE_CLIENT_ID")
	}
	if c.Directory.ClientSecret == "" {
		missing = append(missing, "AZURE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	if c.Worker.Interval <= 0 {
		return fmt.Errorf("%w: WORKER_INTERVAL must be positive", ErrMissingConfig)
	}
	return nil
}

func (p PostgresConfig) validate() error {
	if p.DatabaseURL != "" {
		return nil
	}
	if p.User == "" || p.Database == "" {
		return fmt.Errorf("%w: DATABASE_URL or PGUSER/PGDATABASE", ErrMissingConfig)
	}
	return nil
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return "gpt-4o"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getduration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
