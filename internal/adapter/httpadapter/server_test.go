package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/swe-alert-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/swe-alert-service/internal/adapter/state"
	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockState struct {
	res domain.CheckResult
	err error
}

func (m *mockState) Latest(_ context.Context) (domain.CheckResult, error) { return m.res, m.err }

func newTestServer(readyErr error, st *mockState) *httpadapter.Server {
	if st == nil {
		st = &mockState{err: state.ErrNoState}
	}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, st, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("no successful check yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStateReturns404BeforeFirstCheck(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/state")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStateReturnsLatestResult(t *testing.T) {
	reading := domain.WindowValues{0.2, 0.5, 1.8, 2.0, 3.0}
	res := domain.CheckResult{
		ID:          "chk-1",
		CheckedAt:   time.Date(2025, 1, 12, 14, 5, 0, 0, time.UTC),
		Station:     "SUNQ1",
		Observation: domain.NewObservation(reading),
		Decision:    domain.Evaluate(reading, domain.CentimeterThresholds{domain.Window24h: 2.54}),
	}

	rec := serve(newTestServer(nil, &mockState{res: res}), "/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "chk-1", body["id"])
	assert.Equal(t, "SUNQ1", body["station"])
	decision, ok := body["decision"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, decision["alert"])
}

func TestStateReturns500OnStoreError(t *testing.T) {
	rec := serve(newTestServer(nil, &mockState{err: errors.New("database is locked")}), "/state")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "locked")
}
