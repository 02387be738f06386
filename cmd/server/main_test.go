package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/CareFusion/internal/assessment"
	"github.com/Skufu/CareFusion/internal/config"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, assessment.GenerateRequest) (string, error) {
	return s.text, s.err
}

const criticalReply = `{"mentalScore":80,"physicalScore":90,"overallRisk":95,"level":"LOW","route":"SELF_CARE",
"reasoning":"Chest pain with shortness of breath.","recommendations":["Call emergency services","Do not drive","Stay with someone"]}`

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8080",
		Env:            "test",
		LogLevel:       "info",
		GinMode:        gin.TestMode,
		HistoryBackend: config.BackendMemory,
		GeminiAPIKey:   "test-key",
		GeminiModel:    "test-model",
		AITimeout:      time.Second,
		CORSOrigins:    []string{"*"},
		DefaultUserID:  "user_123",
		MaxBodyBytes:   1 << 20,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, gen assessment.Generator) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, zerolog.Nop(), gen)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRouterHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(newTestApp(t, testConfig(), nil))

	w := serve(router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("db disabled", func(t *testing.T) {
		router := setupRouter(newTestApp(t, testConfig(), nil))
		w := serve(router, http.MethodGet, "/readyz", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "disabled") {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("db unhealthy", func(t *testing.T) {
		a := newTestApp(t, testConfig(), nil)
		a.health = fakeDB{err: errors.New("connection refused")}
		w := serve(setupRouter(a), http.MethodGet, "/readyz", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "degraded") {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("db healthy", func(t *testing.T) {
		a := newTestApp(t, testConfig(), nil)
		a.health = fakeDB{}
		w := serve(setupRouter(a), http.MethodGet, "/readyz", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestAssessmentFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(newTestApp(t, testConfig(), stubGenerator{text: criticalReply}))

	w := serve(router, http.MethodPost, "/api/assessment",
		`{"mentalInput":"panicking","physicalInput":"chest pain and short of breath"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out assessment.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if out.Result.Level != "CRITICAL" || out.Target != "tel:911" || !out.Saved {
		t.Fatalf("expected saved critical emergency outcome, got %+v", out)
	}

	w = serve(router, http.MethodGet, "/api/history/user_123", "")
	var items []assessment.Result
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil || len(items) != 1 {
		t.Fatalf("expected one history entry, got %s (%v)", w.Body.String(), err)
	}
	if items[0].ID != out.Result.ID {
		t.Fatalf("history entry %s does not match %s", items[0].ID, out.Result.ID)
	}

	w = serve(router, http.MethodGet, "/api/history/user_123/report.pdf", "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf report, got %d", w.Code)
	}
}

func TestAssessmentValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(newTestApp(t, testConfig(), stubGenerator{text: criticalReply}))

	w := serve(router, http.MethodPost, "/api/assessment", `{"mentalInput":"","physicalInput":"chest pain"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for validation failure, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected validation error response, got %s", w.Body.String())
	}
}

func TestAssessmentWithoutAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	router := setupRouter(newTestApp(t, cfg, nil))

	w := serve(router, http.MethodPost, "/api/assessment", `{"mentalInput":"tired","physicalInput":"headache"}`)
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "config_error") {
		t.Fatalf("expected 503 config_error, got %d %s", w.Code, w.Body.String())
	}

	// chat keeps answering with the fallback
	w = serve(router, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "couldn't process that") {
		t.Fatalf("expected fallback chat reply, got %d %s", w.Code, w.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.MaxBodyBytes = 32
	router := setupRouter(newTestApp(t, cfg, stubGenerator{text: criticalReply}))

	t.Run("within limit", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/api/risk/classify", `{"overallRisk":10}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/api/assessment", `{"mentalInput":"`+strings.Repeat("a", 64)+`"}`)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestPortalRoutesMounted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(newTestApp(t, testConfig(), nil))

	for _, path := range []string{"/beds", "/api/beds", "/api/appointments", "/api/medications/user_123"} {
		if w := serve(router, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestSQLiteHistoryBackend(t *testing.T) {
	cfg := testConfig()
	cfg.HistoryBackend = config.BackendSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "history.db")
	a := newTestApp(t, cfg, stubGenerator{text: criticalReply})

	if _, err := a.assessments.Assess(context.Background(), "u1", "anxious", "chest pain"); err != nil {
		t.Fatalf("assess: %v", err)
	}
	items, err := a.assessments.History(context.Background(), "u1")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one sqlite history entry, got %d (%v)", len(items), err)
	}
}

func TestNewAppRejectsBadPolicyFile(t *testing.T) {
	cfg := testConfig()
	cfg.RiskPolicyFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := newApp(context.Background(), cfg, zerolog.Nop(), nil); err == nil {
		t.Fatal("expected error for a missing policy file")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "WARN"
	if got := newLogger(cfg).GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", got)
	}
	cfg.LogLevel = "nonsense"
	if got := newLogger(cfg).GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("expected info fallback, got %s", got)
	}
}

func TestClassifyCommand(t *testing.T) {
	for _, k := range []string{"ENABLE_DB", "DATABASE_URL", "HISTORY_BACKEND", "RISK_POLICY_FILE", "AI_TIMEOUT"} {
		t.Setenv(k, "")
	}

	var out bytes.Buffer
	cmd := classifyCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--overall", "30", "--physical", "61"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.Contains(out.String(), "MEDIUM RISK") || !strings.Contains(out.String(), "/video") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestPrintOutcome(t *testing.T) {
	var out bytes.Buffer
	printOutcome(&out, assessment.Outcome{
		Result: assessment.Result{
			Level: "HIGH", Route: "TELECONSULTATION", OverallRisk: 60,
			Reasoning:       "Worsening symptoms.",
			Recommendations: []string{"Book a video consult"},
		},
		Saved: false,
	})
	for _, want := range []string{"HIGH RISK", "/video", "1. Book a video consult", "could not be saved"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}
