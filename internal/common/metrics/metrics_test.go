package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.InitDataVerified("ok")
	m.InitDataVerified("ok")
	m.InitDataVerified("invalid_signature")
	m.SessionIssued("telegram")

	body := scrape(t, m)
	assert.Contains(t, body, `miniurban_initdata_verifications_total{result="ok"} 2`)
	assert.Contains(t, body, `miniurban_initdata_verifications_total{result="invalid_signature"} 1`)
	assert.Contains(t, body, `miniurban_admin_sessions_issued_total{kind="telegram"} 1`)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.InitDataVerified("ok")
		m.GuardDecision("allow")
		m.Handshake("start", "ok")
	})
}

func TestMetrics_HandlerExposesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `miniurban_http_request_duration_seconds_count{method="GET",route="/ping",status="200"} 1`))
}
