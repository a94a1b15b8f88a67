package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basketwise/basket-cli/internal/catalog"
	"github.com/basketwise/basket-cli/internal/config"
	"github.com/basketwise/basket-cli/internal/engine"
	"github.com/basketwise/basket-cli/internal/model"
	"github.com/basketwise/basket-cli/internal/store"
)

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	runs map[string]store.StoredRun
}

func newMemStore() *memStore { return &memStore{runs: make(map[string]store.StoredRun)} }

func (m *memStore) SaveRun(_ context.Context, run store.StoredRun) error {
	m.runs[run.RunID] = run
	return nil
}

func (m *memStore) GetRun(_ context.Context, runID string) ([]byte, error) {
	run, ok := m.runs[runID]
	if !ok {
		return nil, store.ErrRunNotFound
	}
	return run.Result, nil
}

func (m *memStore) ListRuns(_ context.Context, _ store.RunFilter) ([]store.RunSummary, error) {
	var out []store.RunSummary
	for _, run := range m.runs {
		out = append(out, store.RunSummary{
			RunID:       run.RunID,
			Items:       run.Items,
			Unfulfilled: run.Unfulfilled,
			Recommended: run.Recommended,
		})
	}
	return out, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

func testServer(s store.Store) *Server {
	snapshot := catalog.NewSnapshot(map[string][]model.Candidate{
		"strawberries": {
			{ID: "straw-organic", VendorID: "greenmart", Price: 3.99, PackageAmount: 1, PackageUnit: "lb",
				Organic: true, Residue: model.ResidueHigh, InStock: true},
			{ID: "straw-conv", VendorID: "rivercoop", Price: 2.49, PackageAmount: 1, PackageUnit: "lb",
				Residue: model.ResidueHigh, InStock: true},
		},
		"milk": {
			{ID: "milk-gal", VendorID: "greenmart", Price: 4.29, PackageAmount: 1, PackageUnit: "gallon", InStock: true},
		},
	}, nil)

	vendors := []model.Vendor{
		{ID: "greenmart", Name: "GreenMart", Priority: 1},
		{ID: "rivercoop", Name: "River Co-op", Priority: 2},
	}

	return New(snapshot, vendors, engine.New(config.DefaultWeights(), 2), s, "greenmart")
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	testServer(nil).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPlanEndpoint(t *testing.T) {
	body := `{
		"ingredients": [
			{"key": "strawberries", "amount": 2, "unit": "lb"},
			{"key": "milk", "amount": 1, "unit": "gallon"}
		]
	}`
	w := httptest.NewRecorder()
	testServer(nil).Handler().ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/v1/plan", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result model.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Items, 2)
	require.Len(t, result.Plan.Assignments, 1)
	assert.Equal(t, "greenmart", result.Plan.Assignments[0].VendorID)
	assert.Nil(t, result.Trace)
}

func TestPlanEndpointTraceAndScope(t *testing.T) {
	body := `{
		"ingredients": [{"key": "strawberries", "amount": 1, "unit": "lb"}],
		"vendors": ["rivercoop"],
		"trace": true
	}`
	w := httptest.NewRecorder()
	testServer(nil).Handler().ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/v1/plan", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result model.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "straw-conv", result.Items[0].Winner.ID)
	require.NotNil(t, result.Trace)
	assert.NotNil(t, result.Trace.ForKey("strawberries"))
}

func TestPlanEndpointBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty ingredients", `{"ingredients": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			testServer(nil).Handler().ServeHTTP(w,
				httptest.NewRequest(http.MethodPost, "/v1/plan", bytes.NewReader([]byte(tt.body))))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPlanEndpointSave(t *testing.T) {
	s := newMemStore()
	body := `{
		"ingredients": [{"key": "milk", "amount": 1, "unit": "gallon"}],
		"save": true
	}`
	w := httptest.NewRecorder()
	testServer(s).Handler().ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/v1/plan", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.runs, 1)
}

func TestRunsEndpoints(t *testing.T) {
	s := newMemStore()
	require.NoError(t, s.SaveRun(context.Background(), store.StoredRun{
		RunID:       "run-1",
		Result:      []byte(`{"run_id":"run-1"}`),
		Items:       2,
		Recommended: 12.34,
	}))
	handler := testServer(s).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-1")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/runs/run-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"run_id":"run-1"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/runs/run-404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsEndpointsWithoutStore(t *testing.T) {
	handler := testServer(nil).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
