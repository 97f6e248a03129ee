package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/epinet"
	adapter "github.com/aretw0/epinet/pkg/adapters/http"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := epinet.New(epinet.WithSeed(7))
	require.NoError(t, err)

	h, err := adapter.NewHandler(svc, adapter.WithMetrics(observability.NewMetrics().Handler()))
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func generate(t *testing.T, srv *httptest.Server, n int) epinet.Status {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/graph/generate/islamabad_uniform", `{"n": `+itoa(n)+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var status epinet.Status
	require.NoError(t, json.Unmarshal(body, &status))
	return status
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok": true}`, string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestGenerate(t *testing.T) {
	srv := newServer(t)

	t.Run("Accepted", func(t *testing.T) {
		status := generate(t, srv, 200)
		assert.NotEmpty(t, status.GraphID)
		assert.NotEmpty(t, status.SimID)
		assert.Equal(t, 0, status.Day)
		assert.Equal(t, 200, status.Counts.Total())
		assert.False(t, status.Lockdown)
	})

	t.Run("Alias", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPost, "/graph/generate", `{"n": 300}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"Too Small", `{"n": 100}`, "n must be between 200 and 20000"},
		{"Too Large", `{"n": 30000}`, "n must be between 200 and 20000"},
		{"Missing n", `{}`, ""},
		{"Wrong Type", `{"n": "many"}`, ""},
		{"Not An Integer", `{"n": 250.5}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodPost, "/graph/generate/islamabad_uniform", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e struct{ Detail string }
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Detail)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, e.Detail)
			}
		})
	}
}

func TestExportGraph(t *testing.T) {
	srv := newServer(t)
	status := generate(t, srv, 250)

	resp, body := do(t, srv, http.MethodGet, "/graph/"+status.GraphID+"/export/json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var export struct {
		Nodes []domain.Node
		Edges []domain.Edge
		Meta  struct {
			Bounds  map[string]float64
			RadiusM float64 `json:"infection_radius_m"`
			N, M    int
		}
	}
	require.NoError(t, json.Unmarshal(body, &export))
	assert.Len(t, export.Nodes, 250)
	assert.Equal(t, 250, export.Meta.N)
	assert.Equal(t, len(export.Edges), export.Meta.M)
	assert.Equal(t, 25.0, export.Meta.RadiusM)
	assert.Equal(t, 33.55, export.Meta.Bounds["lat_min"])
	for _, e := range export.Edges {
		assert.Less(t, e.A, e.B)
	}

	t.Run("Not Found", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodGet, "/graph/nope/export/json", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"detail": "graph not found"}`, string(body))
	})
}

func TestExportMermaid(t *testing.T) {
	srv := newServer(t)
	status := generate(t, srv, 200)

	resp, body := do(t, srv, http.MethodGet, "/graph/"+status.GraphID+"/export/mermaid?limit=10&sim_id="+status.SimID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph LR\n"))
	assert.Contains(t, string(body), "showing 10 of 200 nodes")
	assert.Contains(t, string(body), "State Overlay")

	resp, _ = do(t, srv, http.MethodGet, "/graph/"+status.GraphID+"/export/mermaid?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit must be positive")
}

func TestStep(t *testing.T) {
	srv := newServer(t)
	created := generate(t, srv, 200)
	path := "/sim/" + created.SimID + "/step"

	resp, body := do(t, srv, http.MethodPost, path, `{"days": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	for _, key := range []string{"sim_id", "day", "counts", "policy_message", "policy_quarantine_on"} {
		assert.Contains(t, raw, key)
	}
	assert.EqualValues(t, 1, raw["day"])

	t.Run("Default One Day", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var status epinet.Status
		require.NoError(t, json.Unmarshal(body, &status))
		assert.Equal(t, 2, status.Day)
	})

	t.Run("Clamped", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, path, `{"days": 500}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var status epinet.Status
		require.NoError(t, json.Unmarshal(body, &status))
		assert.LessOrEqual(t, status.Day, 32)
		assert.Equal(t, 200, status.Counts.Total())
	})

	t.Run("Invalid Days", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPost, path, `{"days": "ten"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Not Found", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, "/sim/nope/step", `{"days": 1}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"detail": "sim not found"}`, string(body))
	})
}

func TestExportStateAndTimeseries(t *testing.T) {
	srv := newServer(t)
	created := generate(t, srv, 200)
	do(t, srv, http.MethodPost, "/sim/"+created.SimID+"/step", `{"days": 5}`)

	resp, body := do(t, srv, http.MethodGet, "/sim/"+created.SimID+"/export/state.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state struct{ State []int }
	require.NoError(t, json.Unmarshal(body, &state))
	require.Len(t, state.State, 200)
	for _, c := range state.State {
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 4)
	}

	resp, body = do(t, srv, http.MethodGet, "/sim/"+created.SimID+"/timeseries", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ts struct{ Series []map[string]int }
	require.NoError(t, json.Unmarshal(body, &ts))
	require.Len(t, ts.Series, 6)
	assert.Equal(t, 0, ts.Series[0]["day"])
	assert.Equal(t, 200, ts.Series[5]["S"]+ts.Series[5]["E"]+ts.Series[5]["I"]+ts.Series[5]["Q"]+ts.Series[5]["R"])

	resp, body = do(t, srv, http.MethodGet, "/sim/"+created.SimID+"/timeseries?last=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &ts))
	require.Len(t, ts.Series, 2)
	assert.Equal(t, 5, ts.Series[1]["day"])

	resp, _ = do(t, srv, http.MethodGet, "/sim/"+created.SimID+"/timeseries?last=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/sim/nope/export/state.json", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenAPIAndMetrics(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "openapi: 3.0.3")

	resp, body = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "epinet_steps_total")
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)
	resp, _ := do(t, srv, http.MethodOptions, "/sim/x/step", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

type brokenSimulator struct{ *epinet.Service }

func (brokenSimulator) Generate(context.Context, int) (epinet.Status, error) {
	return epinet.Status{}, errors.New("disk on fire")
}

func TestInternalError(t *testing.T) {
	svc, err := epinet.New()
	require.NoError(t, err)
	h, err := adapter.NewHandler(brokenSimulator{Service: svc})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graph/generate", strings.NewReader(`{"n": 500}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail": "disk on fire"}`, rec.Body.String())
}
