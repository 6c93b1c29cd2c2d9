package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/autoops/backend/internal/config"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenURL = "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/token"

func newMockedGraphClient(t *testing.T) *GraphClient {
	t.Helper()
	c := NewGraphClient(config.DirectoryConfig{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	})
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func registerToken(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, testTokenURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"access_token": "graph-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}))
}

func TestGraphClientDefaultDomain(t *testing.T) {
	c := newMockedGraphClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, graphBaseURL+"/domains",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer graph-token", req.Header.Get("Authorization"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"value": []map[string]any{
					{"id": "contoso.onmicrosoft.com", "isDefault": false, "isVerified": true},
					{"id": "unverified.com", "isDefault": true, "isVerified": false},
					{"id": "contoso.com", "isDefault": true, "isVerified": true},
				},
			})
		})

	domain, err := c.DefaultDomain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "contoso.com", domain)
}

func TestGraphClientCreateUser(t *testing.T) {
	c := newMockedGraphClient(t)
	registerToken(t)

	var sent map[string]any
	httpmock.RegisterResponder(http.MethodPost, graphBaseURL+"/users",
		func(req *http.Request) (*http.Response, error) {
			_ = json.NewDecoder(req.Body).Decode(&sent)
			return httpmock.NewJsonResponse(http.StatusCreated, map[string]any{
				"id":                "user-1",
				"displayName":       "Jane Smith",
				"userPrincipalName": "jane.smith@contoso.com",
			})
		})

	created, err := c.CreateUser(context.Background(), NewUser{
		DisplayName:       "Jane Smith",
		MailNickname:      "jane.smith",
		UserPrincipalName: "jane.smith@contoso.com",
		Password:          "Aa1!aaaaaaaaaaaa",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.smith@contoso.com", created.UserPrincipalName)

	profile, ok := sent["passwordProfile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, profile["forceChangePasswordNextSignIn"])
	assert.Equal(t, true, sent["accountEnabled"])
}

func TestGraphClientCreateUserConflict(t *testing.T) {
	c := newMockedGraphClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodPost, graphBaseURL+"/users",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    "Request_BadRequest",
				"message": "Another object with the same value for property userPrincipalName already exists.",
			},
		}))

	_, err := c.CreateUser(context.Background(), NewUser{UserPrincipalName: "jane.smith@contoso.com"})
	require.Error(t, err)

	var gErr *GraphError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, http.StatusBadRequest, gErr.StatusCode)
	assert.Contains(t, gErr.Error(), "already exists")
}

func TestGraphClientCountManagedDevicesFollowsNextLink(t *testing.T) {
	c := newMockedGraphClient(t)
	registerToken(t)

	nextLink := graphBaseURL + "/deviceManagement/managedDevices?page=2"
	httpmock.RegisterResponder(http.MethodGet, graphBaseURL+"/deviceManagement/managedDevices",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"value":           []map[string]any{{"id": "d1"}, {"id": "d2"}},
			"@odata.nextLink": nextLink,
		}))
	httpmock.RegisterResponder(http.MethodGet, nextLink,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"value": []map[string]any{{"id": "d3"}},
		}))

	count, err := c.CountManagedDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// 토큰은 재사용
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["POST "+testTokenURL])
}

func TestGraphClientCountManagedDevicesForbidden(t *testing.T) {
	c := newMockedGraphClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, graphBaseURL+"/deviceManagement/managedDevices",
		httpmock.NewStringResponder(http.StatusForbidden, `{"error":{"code":"Forbidden","message":"Missing DeviceManagementManagedDevices.Read.All"}}`))

	_, err := c.CountManagedDevices(context.Background())

	var gErr *GraphError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, http.StatusForbidden, gErr.StatusCode)
	assert.Contains(t, gErr.Body, "DeviceManagementManagedDevices")
}

func TestGraphClientTokenFailureIsNotGraphError(t *testing.T) {
	c := newMockedGraphClient(t)
	httpmock.RegisterResponder(http.MethodPost, testTokenURL,
		httpmock.NewJsonResponderOrPanic(http.StatusUnauthorized, map[string]any{
			"error":             "invalid_client",
			"error_description": "bad secret",
		}))

	_, err := c.CountManagedDevices(context.Background())
	require.Error(t, err)

	var gErr *GraphError
	assert.False(t, errors.As(err, &gErr))
}

func TestGraphClientTokenFetchHonorsContext(t *testing.T) {
	c := newMockedGraphClient(t)
	httpmock.RegisterResponder(http.MethodPost, testTokenURL,
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Token(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)

	// 실패한 발급은 캐시하지 않고 다음 호출에서 다시 요청
	registerToken(t)
	token, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "graph-token", token)
}

func TestGraphClientTokenRefreshesAfterExpiry(t *testing.T) {
	c := newMockedGraphClient(t)
	registerToken(t)

	_, err := c.Token(context.Background())
	require.NoError(t, err)
	c.token.Expiry = time.Now().Add(-time.Minute)

	_, err = c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, httpmock.GetCallCountInfo()["POST "+testTokenURL])
}
