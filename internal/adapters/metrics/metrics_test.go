package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
	"go.uber.org/zap/zapcore"
)

func TestInstrument(t *testing.T) {
	Init()
	Init()

	h := Instrument("GET /v1/events/global_events/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /v1/events/global_events/{id}", "418"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/global_events/abc", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /v1/events/global_events/{id}", "418"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	Init()
	AttendanceScans.Inc()
	LogHook(types.Log{LoggerName: "main.http", Level: zapcore.ErrorLevel})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "vstrecha_attendance_scans_total"))
	assert.True(t, strings.Contains(body, `vstrecha_log_entries_total{level="error",logger="main.http"}`))
}
