package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jubilee25/celebration-api/internal/adapters/httpapi"
	memclock "github.com/jubilee25/celebration-api/internal/adapters/memory/clock"
	memidempotency "github.com/jubilee25/celebration-api/internal/adapters/memory/idempotency"
	memregistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/memory/registrationrepo"
	pgidempotency "github.com/jubilee25/celebration-api/internal/adapters/postgres/idempotency"
	pgregistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/postgres/registrationrepo"
	postgres_testutil "github.com/jubilee25/celebration-api/internal/adapters/postgres/testutil"
	"github.com/jubilee25/celebration-api/internal/adapters/static/eventcatalog"
	"github.com/jubilee25/celebration-api/internal/app/events"
	"github.com/jubilee25/celebration-api/internal/app/registrations"
	idempotencyport "github.com/jubilee25/celebration-api/internal/ports/out/idempotency"
	registrationrepoport "github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

const adminDomain = "temple.example.org"

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend, exportChunkSize int) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2025, 12, 1, 8, 30, 0, 0, time.UTC))

	var (
		repo registrationrepoport.Repository
		idem idempotencyport.Store
	)
	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		repo = pgregistrationrepo.NewRepo(pool)
		idem = pgidempotency.NewStore(pool)
	case backendMemory:
		repo = memregistrationrepo.NewRepo()
		idem = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	regs := registrations.NewService(repo, clk)
	if exportChunkSize > 0 {
		regs.ExportChunkSize = exportChunkSize
	}
	catalog, err := eventcatalog.New()
	if err != nil {
		t.Fatalf("eventcatalog.New: %v", err)
	}

	// Empty defaults force every admin request to name its principal, which keeps
	// auth-failure coverage possible.
	handler := httpapi.NewRouter(
		httpapi.NewHandlers(regs, events.NewService(catalog), idem, nil),
		httpapi.RouterOptions{
			AuthMiddleware:   httpapi.NewDevAuthMiddleware("", ""),
			AdminEmailDomain: adminDomain,
		},
	)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

// principal is the dev-auth identity sent with a request; the zero value is anonymous.
type principal struct {
	Subject string
	Email   string
}

var admin = principal{Subject: "dev|admin", Email: "seva@" + adminDomain}

func (s *testServer) do(t *testing.T, method string, path string, who principal, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.Subject != "" {
		req.Header.Set("X-Debug-Subject", who.Subject)
	}
	if who.Email != "" {
		req.Header.Set("X-Debug-Email", who.Email)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireError(t *testing.T, status int, body []byte, wantStatus int, wantError string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error != wantError {
		t.Fatalf("error=%q want=%q body=%s", got.Error, wantError, string(body))
	}
}

func requireHeader(t *testing.T, h http.Header, key, want string) {
	t.Helper()
	if got := h.Get(key); got != want {
		t.Fatalf("header %s=%q want %q", key, got, want)
	}
}
