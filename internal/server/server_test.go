package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sundayezeilo/usermgmt/hashid"
	"github.com/sundayezeilo/usermgmt/internal/config"
	"github.com/sundayezeilo/usermgmt/internal/httpx"
	"github.com/sundayezeilo/usermgmt/internal/user"
)

type stubService struct{}

func (stubService) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	now := time.Now()
	return user.User{
		ID:        1,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      user.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (stubService) List(ctx context.Context) ([]user.User, error) {
	return []user.User{}, nil
}

func (stubService) GetByID(ctx context.Context, id int64) (user.User, error) {
	return user.User{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	codec, err := hashid.New(hashid.Config{Salt: "test-salt", MinLength: hashid.DefaultMinLength})
	if err != nil {
		t.Fatalf("hashid.New() failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := user.NewHandler(user.HandlerConfig{
		Service: stubService{},
		Codec:   codec,
		Logger:  logger,
	})

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:            "0",
			Host:            "127.0.0.1",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		App: config.AppConfig{Environment: "test", LogLevel: "error"},
		Observability: config.ObservabilityConfig{
			ServiceName:    "usermgmt-test",
			ServiceVersion: "test",
		},
	}

	return New(cfg, logger, handler)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	createBody := `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"correct horse"}`

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/x/health", "", http.StatusOK},
		{"create user", http.MethodPost, "/user", createBody, http.StatusCreated},
		{"create user trailing slash", http.MethodPost, "/user/", createBody, http.StatusCreated},
		{"list users", http.MethodGet, "/user/list", "", http.StatusOK},
		{"get user with bad token", http.MethodGet, "/user/id/nope", "", http.StatusBadRequest},
		{"get user without token", http.MethodGet, "/user/id/", "", http.StatusNotFound},
		{"list with wrong method", http.MethodPost, "/user/list", "", http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/api/users", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d (body: %s)", tt.method, tt.path, rr.Code, tt.wantStatus, rr.Body.String())
			}
			if rr.Header().Get(httpx.RequestIDHeader) == "" {
				t.Error("expected X-Request-ID header to be set")
			}
		})
	}
}

func TestServer_HealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x/health", nil))

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
	if resp["service"] != "usermgmt-test" {
		t.Errorf("service = %q, want usermgmt-test", resp["service"])
	}
}

func TestServer_StartStopsOnContextCancel(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancel")
	}
}

func TestServer_RecoveredPanicIsLogged(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	srv.logger = slog.New(slog.NewJSONHandler(&buf, nil))

	h := srv.applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user/list", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}

	var sawPanic, sawAccess bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		switch entry["msg"] {
		case "panic recovered":
			sawPanic = true
		case "http request":
			sawAccess = true
			if entry["status"] != float64(http.StatusInternalServerError) {
				t.Errorf("access log status = %v, want 500", entry["status"])
			}
			if entry["level"] != "ERROR" {
				t.Errorf("access log level = %v, want ERROR", entry["level"])
			}
			if entry["request_id"] == "" || entry["request_id"] == nil {
				t.Error("access log missing request_id")
			}
		}
	}
	if !sawPanic {
		t.Error("panic was not logged")
	}
	if !sawAccess {
		t.Error("access log line missing for panicking request")
	}
}
