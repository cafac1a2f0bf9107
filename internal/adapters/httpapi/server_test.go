package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockDetector struct {
	mock.Mock
}

func (m *mockDetector) Analyze(ctx context.Context, text string) (*core.Analysis, error) {
	args := m.Called(ctx, text)
	if a := args.Get(0); a != nil {
		return a.(*core.Analysis), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDetector) ModelVersion() string {
	return m.Called().String(0)
}

func newTestServer(d Detector) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"}))
	return NewServer(d, ModelInfo{Version: "rf-test", Features: 12}, reg,
		Options{ListenAddress: "127.0.0.1:0", MaxRequestSize: "1K"}, zap.NewNop())
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPredict(t *testing.T) {
	d := &mockDetector{}
	result := core.NewPredictionResult(0.8, 0.2)
	result.ModelVersion = "rf-test"
	d.On("Analyze", mock.Anything, "Click here now").Return(&core.Analysis{
		Result:    result,
		Wordcloud: []features.Term{{Word: "click", Weight: 1}},
	}, nil)

	rec := do(newTestServer(d), http.MethodPost, "/predict", `{"email_text":"Click here now"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.LabelPhishing, resp.Prediction)
	assert.True(t, resp.IsPhishing)
	assert.Equal(t, 0.8, resp.ConfidencePhishing)
	assert.Equal(t, 0.2, resp.ConfidenceLegitimate)
	assert.Equal(t, []features.Term{{Word: "click", Weight: 1}}, resp.Wordcloud)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	d.AssertExpectations(t)
}

func TestPredictBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{}`},
		{"empty text", `{"email_text":""}`},
		{"malformed json", `{"email_text":`},
		{"numeric text", `{"email_text":123}`},
		{"array text", `{"email_text":["a"]}`},
		{"null text", `{"email_text":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDetector{}
			rec := do(newTestServer(d), http.MethodPost, "/predict", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
			d.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		})
	}
}

func TestPredictWhitespaceText(t *testing.T) {
	d := &mockDetector{}
	d.On("Analyze", mock.Anything, "   ").Return(nil, core.ErrInvalidInput)

	rec := do(newTestServer(d), http.MethodPost, "/predict", `{"email_text":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictInternalError(t *testing.T) {
	d := &mockDetector{}
	d.On("Analyze", mock.Anything, "hello").Return(nil, errors.Join(core.ErrSchemaMismatch, errors.New("bad vector")))

	rec := do(newTestServer(d), http.MethodPost, "/predict", `{"email_text":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error during prediction")
}

func TestPredictBodyLimit(t *testing.T) {
	d := &mockDetector{}
	body := `{"email_text":"` + strings.Repeat("a", 2048) + `"}`

	rec := do(newTestServer(d), http.MethodPost, "/predict", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealth(t *testing.T) {
	d := &mockDetector{}
	d.On("ModelVersion").Return("rf-test")

	rec := do(newTestServer(d), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "loaded", resp["model_status"])
}

func TestAPIInfo(t *testing.T) {
	rec := do(newTestServer(&mockDetector{}), http.MethodGet, "/api/info", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Name      string            `json:"name"`
		Endpoints map[string]string `json:"endpoints"`
		Model     ModelInfo         `json:"model"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Phishing Email Detector API", resp.Name)
	assert.Contains(t, resp.Endpoints, "/predict")
	assert.Equal(t, "rf-test", resp.Model.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestServer(&mockDetector{}), http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_total")
}
