package report

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/CareFusion/internal/assessment"
	"github.com/Skufu/CareFusion/internal/risk"
)

type stubHistory struct {
	items []assessment.Result
	err   error
}

func (s stubHistory) History(context.Context, string) ([]assessment.Result, error) {
	return s.items, s.err
}

func sample() []assessment.Result {
	return []assessment.Result{
		{
			ID: uuid.New(), UserID: "user_123",
			MentalScore: 70, PhysicalScore: 40, OverallRisk: 55,
			Level: risk.High, Route: risk.Teleconsultation,
			Reasoning:       "Persistent low mood with sleep disruption, café visits reduced.",
			Recommendations: []string{"Book a video consult", "Keep a sleep diary", "Reach out to a friend"},
			Timestamp:       time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
		},
		{
			ID: uuid.New(), UserID: "user_123",
			MentalScore: 10, PhysicalScore: 12, OverallRisk: 11,
			Level: risk.Low, Route: risk.SelfCare,
			Reasoning:       "No concerning symptoms.",
			Recommendations: []string{"Stay hydrated"},
			Timestamp:       time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "user_123", sample(), time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "nobody", nil, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func newRouter(src HistorySource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(src))
	return r
}

func TestDownload(t *testing.T) {
	r := newRouter(stubHistory{items: sample()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history/user_123/report.pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "carefusion-user_123.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestDownload_FilenameIsQuoted(t *testing.T) {
	r := newRouter(stubHistory{items: sample()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history/a%22b%20c/report.pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, `carefusion-a"b c.pdf`, params["filename"])
}

func TestDownload_PersistenceError(t *testing.T) {
	err := errors.Join(assessment.ErrPersistence, errors.New("db down"))
	r := newRouter(stubHistory{err: err})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history/user_123/report.pdf", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
