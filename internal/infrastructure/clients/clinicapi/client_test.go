package clinicapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/pkg/config"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
	Cookie      string
}

func newTestClient(t *testing.T, server *httptest.Server) *HTTPClient {
	t.Helper()
	client, err := NewClient(&config.APIConfig{
		BaseURL:       server.URL + "/",
		Timeout:       2 * time.Second,
		SessionCookie: "clinic_session",
		SessionToken:  "s3cr3t",
	}, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func TestHTTPClient_VerbsPathsAndBodies(t *testing.T) {
	var (
		mu  sync.Mutex
		got []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cookie, _ := r.Cookie("clinic_session")
		rec := recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		}
		if cookie != nil {
			rec.Cookie = cookie.Value
		}
		mu.Lock()
		got = append(got, rec)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	ctx := context.Background()
	payload := map[string]string{"name": "Ana"}

	tests := []struct {
		name       string
		call       func() (*Result, error)
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{"get", func() (*Result, error) { return client.Get(ctx, "/patients") }, http.MethodGet, "/patients", ""},
		{"post", func() (*Result, error) { return client.Post(ctx, "/patients", payload) }, http.MethodPost, "/patients", `{"name":"Ana"}`},
		{"put", func() (*Result, error) { return client.Put(ctx, "/patients/7", payload) }, http.MethodPut, "/patients/7", `{"name":"Ana"}`},
		{"patch", func() (*Result, error) { return client.Patch(ctx, "appointments/3", payload) }, http.MethodPatch, "/appointments/3", `{"name":"Ana"}`},
		{"delete", func() (*Result, error) { return client.Delete(ctx, "/tasks/9") }, http.MethodDelete, "/tasks/9", ""},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.call()
			require.NoError(t, err)

			mu.Lock()
			require.Len(t, got, i+1)
			req := got[i]
			mu.Unlock()
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, "application/json", req.ContentType)
			assert.Equal(t, "s3cr3t", req.Cookie)
			if tt.wantBody == "" {
				assert.Empty(t, req.Body)
			} else {
				assert.JSONEq(t, tt.wantBody, req.Body)
			}

			value, err := result.Value()
			require.NoError(t, err)
			assert.Equal(t, map[string]interface{}{"ok": true}, value)
		})
	}
}

func TestHTTPClient_NonJSONSuccessReturnsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("deleted"))
	}))
	defer server.Close()

	result, err := newTestClient(t, server).Delete(context.Background(), "/patients/1")
	require.NoError(t, err)
	assert.False(t, result.IsJSON())

	value, err := result.Value()
	require.NoError(t, err)
	assert.Equal(t, "deleted", value)
}

func TestHTTPClient_VendorJSONContentType(t *testing.T) {
	result := &Result{StatusCode: 200, ContentType: "application/problem+json", Body: []byte(`{"a":1}`)}
	assert.True(t, result.IsJSON())

	var out struct {
		A int `json:"a"`
	}
	require.NoError(t, result.Decode(&out))
	assert.Equal(t, 1, out.A)
}

func TestHTTPClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "json message field",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"message":"start is required"}`,
			wantMessage: "start is required",
		},
		{
			name:        "json error field",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"error":"slot taken"}`,
			wantMessage: "slot taken",
		},
		{
			name:        "json without message falls back to status text",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"code":404}`,
			wantMessage: "Not Found",
		},
		{
			name:        "html body falls back to status text",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        "<h1>bad gateway</h1>",
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server).Get(context.Background(), "/appointments")
			require.Error(t, err)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeHTTP, appErr.Type)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.wantMessage, appErr.Message)
		})
	}
}

func TestHTTPClient_MalformedJSONIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "1",`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Get(context.Background(), "/patients")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))
}

func TestHTTPClient_EmptyJSONBodyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	result, err := newTestClient(t, server).Delete(context.Background(), "/patients/1")
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())

	var out map[string]interface{}
	require.NoError(t, result.Decode(&out))
	assert.Nil(t, out)
}

func TestHTTPClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	server.Close()

	_, err := client.Get(context.Background(), "/patients")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestHTTPClient_CancelledContextIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server).Get(ctx, "/patients")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClient_SessionCookieFromServerIsReused(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if c, err := r.Cookie("sid"); err == nil {
			seen = append(seen, c.Value)
		} else {
			seen = append(seen, "")
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(&config.APIConfig{BaseURL: server.URL, Timeout: time.Second}, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/me")
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/patients")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "abc"}, seen)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(&config.APIConfig{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
