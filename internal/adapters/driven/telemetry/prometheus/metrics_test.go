package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/core/domain"
)

func newTestTelemetry() *Telemetry {
	return NewWithRegistry(prometheus.NewRegistry())
}

func TestTelemetry_TurnCompleted(t *testing.T) {
	tel := newTestTelemetry()

	tel.TurnCompleted(domain.ResponseAnswer, 300*time.Millisecond)
	tel.TurnCompleted(domain.ResponseAnswer, 2*time.Second)
	tel.TurnCompleted(domain.ResponseApology, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(tel.Turns.WithLabelValues("answer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Turns.WithLabelValues("apology")))
	assert.Equal(t, 2, testutil.CollectAndCount(tel.TurnDuration))
}

func TestTelemetry_IntentClassified(t *testing.T) {
	tel := newTestTelemetry()

	tel.IntentClassified(domain.IntentKnowledge, "none")
	tel.IntentClassified("", "classification_timeout")

	expected := `
# HELP voiceos_intents_total Classification outcomes by intent type and error kind.
# TYPE voiceos_intents_total counter
voiceos_intents_total{error="classification_timeout",type="none"} 1
voiceos_intents_total{error="none",type="knowledge"} 1
`
	require.NoError(t, testutil.CollectAndCompare(tel.Intents, strings.NewReader(expected)))
}

func TestTelemetry_ActionDispatched(t *testing.T) {
	tel := newTestTelemetry()

	tel.ActionDispatched("call_member", true, "none")
	tel.ActionDispatched("call_member", false, "permission_denied")
	tel.ActionDispatched("call_member", true, "none")

	assert.Equal(t, 2.0, testutil.ToFloat64(tel.Dispatches.WithLabelValues("call_member", "success", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Dispatches.WithLabelValues("call_member", "failure", "permission_denied")))
}

func TestTelemetry_SearchPerformed(t *testing.T) {
	tel := newTestTelemetry()

	tel.SearchPerformed(domain.SearchModeSimilarity, 3)
	tel.SearchPerformed(domain.SearchModeKeyword, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Searches.WithLabelValues("similarity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Searches.WithLabelValues("keyword")))
	assert.Equal(t, 2, testutil.CollectAndCount(tel.SearchResults))
}

func TestTelemetry_Handler(t *testing.T) {
	tel := New()
	tel.TurnCompleted(domain.ResponseAction, 100*time.Millisecond)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `voiceos_turns_total{kind="action"} 1`)
	assert.Contains(t, body, "go_goroutines")
	assert.Same(t, tel.registry, tel.Registry())
}
