package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/greetings-api/internal/adapters/httpapi"
	memclock "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/clock"
	memgreetingrepo "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/greetingrepo"
	memidempotency "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/greetings-api/internal/app/greetings"
)

type testServer struct {
	baseURL string
	client  *http.Client
	repo    *memgreetingrepo.Repo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := memgreetingrepo.NewRepo()
	idemStore := memidempotency.NewStore(clk, 24*time.Hour)

	api := httpapi.NewServer(greetings.NewService(repo), idemStore, clk)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		Logger: zerolog.New(zerolog.NewTestWriter(t)),
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		repo:    repo,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, headers map[string]string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Errorf("marshal body: %v", err)
			return 0, nil, nil
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Errorf("new request: %v", err)
		return 0, nil, nil
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Errorf("do request: %v", err)
		return 0, nil, nil
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type greetingResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireGreeting(t *testing.T, status int, body []byte, want greetingResponse) {
	t.Helper()
	if status != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", status, http.StatusOK, string(body))
	}
	got := mustUnmarshal[greetingResponse](t, body)
	if got != want {
		t.Fatalf("greeting=%+v want=%+v", got, want)
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
