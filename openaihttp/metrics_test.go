package openaihttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/auth"
	"github.com/LubyRuffy/azure2openai/backend"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.observeRequest(routeProxy, 200, 0)
	m.observeUpstream(backend.OperationChatCompletions, 200, 0)
	m.observeFrame(10)
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestMetrics_RecordedByHandler(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: 1\n\ndata: 2\n\n")
	}))
	defer upstream.Close()

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	store := auth.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), auth.Users{"alice": {Key: "sk-cfwalice"}}))
	invoker, err := backend.NewInvoker(backend.InvokerConfig{APIKey: "k", Endpoint: upstream.URL})
	require.NoError(t, err)
	h, err := Handler(Config{
		AdminSecret: "secret",
		Models:      azure2openai.NewModelTable(azure2openai.ModelMapping{Name: "gpt-4", Deployment: "gpt4"}),
		Store:       store,
		Invoker:     invoker,
		Metrics:     metrics,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4","stream":true}`))
	req.Header.Set("Authorization", "Bearer sk-cfwalice")
	h.ServeHTTP(httptest.NewRecorder(), req)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/nope", nil))

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(routeProxy, "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(routeOther, "403")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(routePreflight, "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.upstreamTotal.WithLabelValues(backend.OperationChatCompletions, "200")))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.framesTotal))
	require.Equal(t, float64(len("data: 1\n\ndata: 2\n\n")), testutil.ToFloat64(metrics.frameBytesTotal))
}
