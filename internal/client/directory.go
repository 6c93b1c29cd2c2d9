// Azure AD(Microsoft Graph)와 통신하는 클라이언트 정의
//
// 환경변수:
//   - AZURE_TENANT_ID
//   - AZURE_CLIENT_ID
//   - AZURE_CLIENT_SECRET
//
// client credentials로 https://graph.microsoft.com/.default 토큰을 발급받아
// domains / users / deviceManagement/managedDevices API를 호출

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/autoops/backend/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope   = "https://graph.microsoft.com/.default"
)

// GraphClient 구조체 정의
type GraphClient struct {
	baseURL    string
	httpClient *http.Client
	creds      *clientcredentials.Config

	mu    sync.Mutex
	token *oauth2.Token
}

// GraphError - Graph API가 2xx가 아닌 응답을 준 경우
// 네트워크/인증 실패와 구분하기 위해 별도 타입으로 반환
type GraphError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *GraphError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("graph API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("graph API error %d: %s", e.StatusCode, e.Body)
}

// NewUser - POST /users 요청 내용
type NewUser struct {
	DisplayName       string
	MailNickname      string
	UserPrincipalName string
	Password          string
}

// CreatedUser - POST /users 응답 중 필요한 필드
type CreatedUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

type graphDomain struct {
	ID         string `json:"id"`
	IsDefault  bool   `json:"isDefault"`
	IsVerified bool   `json:"isVerified"`
}

type graphErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GraphClient 객체 생성
func NewGraphClient(cfg config.DirectoryConfig) *GraphClient {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	return &GraphClient{
		baseURL:    graphBaseURL,
		httpClient: httpClient,
		creds:      creds,
	}
}

// Token - bearer 토큰 발급 (만료 전까지 재사용)
// 발급 요청은 호출자의 ctx로 취소되고 같은 httpClient(타임아웃)를 사용
func (c *GraphClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token.AccessToken, nil
	}

	tok, err := c.creds.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		return "", fmt.Errorf("failed to acquire graph token: %w", err)
	}
	c.token = tok
	return tok.AccessToken, nil
}

// GET /domains - 기본(verified) 도메인 반환
func (c *GraphClient) DefaultDomain(ctx context.Context) (string, error) {
	var resp struct {
		Value []graphDomain `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/domains", nil, &resp); err != nil {
		return "", err
	}

	fallback := ""
	for _, d := range resp.Value {
		if !d.IsVerified {
			continue
		}
		if d.IsDefault {
			return d.ID, nil
		}
		if fallback == "" {
			fallback = d.ID
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("no verified domain found")
	}
	return fallback, nil
}

// POST /users - 첫 로그인 시 비밀번호 변경 강제
func (c *GraphClient) CreateUser(ctx context.Context, user NewUser) (*CreatedUser, error) {
	body := map[string]any{
		"accountEnabled":    true,
		"displayName":       user.DisplayName,
		"mailNickname":      user.MailNickname,
		"userPrincipalName": user.UserPrincipalName,
		"passwordProfile": map[string]any{
			"forceChangePasswordNextSignIn": true,
			"password":                      user.Password,
		},
	}

	var created CreatedUser
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/users", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GET /deviceManagement/managedDevices - nextLink를 따라가며 전체 개수 집계
func (c *GraphClient) CountManagedDevices(ctx context.Context) (int, error) {
	next := c.baseURL + "/deviceManagement/managedDevices"
	total := 0
	for next != "" {
		var page struct {
			Value    []json.RawMessage `json:"value"`
			NextLink string            `json:"@odata.nextLink"`
		}
		if err := c.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return 0, err
		}
		total += len(page.Value)
		next = page.NextLink
	}
	return total, nil
}

// Graph API 호출 공통 처리
func (c *GraphClient) do(ctx context.Context, method, url string, in, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal graph request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to graph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gErr := &GraphError{StatusCode: resp.StatusCode, Body: string(body)}
		var parsed graphErrorBody
		if json.Unmarshal(body, &parsed) == nil {
			gErr.Code = parsed.Error.Code
			gErr.Message = parsed.Error.Message
		}
		return gErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
