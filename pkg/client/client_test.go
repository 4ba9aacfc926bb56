package client

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/wigletool/wigle-export/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig("apiname", "apitoken")
	cfg.BaseURL = baseURL
	cfg.RateLimit = 0 // no local pacing in tests
	cfg.Timeout = 5 * time.Second

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultConfig("user", "token"),
			wantErr: false,
		},
		{
			name:    "missing username",
			cfg:     DefaultConfig("", "token"),
			wantErr: true,
		},
		{
			name:    "missing token",
			cfg:     DefaultConfig("user", ""),
			wantErr: true,
		},
		{
			name: "missing user-agent",
			cfg: Config{
				Username: "user",
				APIToken: "token",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	c, err := New(Config{
		Username:  "user",
		APIToken:  "token",
		UserAgent: "test/1.0",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.config.BaseURL == "" {
		t.Error("BaseURL default not applied")
	}
	if c.config.Timeout <= 0 {
		t.Error("Timeout default not applied")
	}
}

func TestClient_Get(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()

	mock.SetResponse("/api/v2/network/search", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"success":true,"results":[{"netid":"aa:bb"}]}`,
	})

	c := newTestClient(t, mock.URL())

	params := url.Values{}
	params.Set("ssid", "coffeeshop")

	body, err := c.Get(context.Background(), "/api/v2/network/search", params)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !strings.Contains(string(body), "aa:bb") {
		t.Errorf("body = %s, want record payload", body)
	}

	req := mock.LastRequest
	if req == nil {
		t.Fatal("no request recorded")
	}
	if got := req.URL.Query().Get("ssid"); got != "coffeeshop" {
		t.Errorf("ssid param = %q, want coffeeshop", got)
	}
}

func TestClient_Get_BasicAuth(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	if _, err := c.Get(context.Background(), "/api/v2/network/search", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	auth := mock.LastRequest.Header.Get("Authorization")
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("apiname:apitoken"))
	if auth != want {
		t.Errorf("Authorization = %q, want %q", auth, want)
	}
	if ua := mock.LastRequest.Header.Get("User-Agent"); ua != "wigle-export/1.0" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestClient_Get_AuthErrorNoRetry(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()

	mock.SetResponse("/api/v2/network/search", testutil.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"success":false}`,
	})

	c := newTestClient(t, mock.URL())

	_, err := c.Get(context.Background(), "/api/v2/network/search", nil)
	if !IsAuthError(err) {
		t.Errorf("Get() error = %v, want auth error", err)
	}
	if n := mock.GetRequestCount(); n != 1 {
		t.Errorf("request count = %d, want 1 (no retry on 401)", n)
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()

	mock.SetResponse("/api/v2/network/detail", testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"success":false,"message":"not found"}`,
	})

	c := newTestClient(t, mock.URL())

	_, err := c.Get(context.Background(), "/api/v2/network/detail", nil)
	if !IsNotFound(err) {
		t.Errorf("Get() error = %v, want not-found error", err)
	}
	if n := mock.GetRequestCount(); n != 1 {
		t.Errorf("request count = %d, want 1", n)
	}
}

func TestClient_Get_RetriesServerError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping backoff timing test in short mode")
	}

	mock := testutil.NewMockWigle()
	defer mock.Close()

	calls := 0
	mock.SetHandler("/api/v2/network/search", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"results":[]}`))
	})

	c := newTestClient(t, mock.URL())

	body, err := c.Get(context.Background(), "/api/v2/network/search", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !strings.Contains(string(body), "success") {
		t.Errorf("body = %s", body)
	}
}

func TestClient_GetCached_NoCacheFallsThrough(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()

	// No Redis configured: GetCached must behave exactly like Get.
	c := newTestClient(t, mock.URL())

	if _, err := c.GetCached(context.Background(), "/api/v2/network/detail", nil); err != nil {
		t.Fatalf("GetCached() error = %v", err)
	}
	if n := mock.GetRequestCount(); n != 1 {
		t.Errorf("request count = %d, want 1", n)
	}
}

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{
			name: "api error",
			err:  &APIError{StatusCode: 429, ErrorClass: ErrorClassRateLimit},
			want: ErrorClassRateLimit,
		},
		{
			name: "plain error defaults to network",
			err:  context.DeadlineExceeded,
			want: ErrorClassNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyErr(tt.err); got != tt.want {
				t.Errorf("classifyErr() = %q, want %q", got, tt.want)
			}
		})
	}
}
