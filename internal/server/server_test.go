package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/flowdeck/flowdeck/internal/descriptor"
	"github.com/flowdeck/flowdeck/internal/flows"
	"github.com/flowdeck/flowdeck/internal/history"
	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/semantic"
)

const testDescriptors = `{
	"Client": {
		"kind": "struct",
		"fields": [
			{"name": "hostname", "friendly_name": "Hostname", "type": "RDFString"},
			{"name": "memory", "type": "ByteSize"}
		]
	}
}`

const testCatalog = `[
	{
		"name": "CollectFiles",
		"friendly_name": "Collect files",
		"category": "Filesystem",
		"args_schema": {
			"type": "object",
			"required": ["paths"],
			"properties": {
				"paths": {"type": "array", "items": {"type": "string"}, "minItems": 1}
			}
		}
	}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.json"), []byte(testDescriptors), 0o644))
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))

	catalog, err := flows.LoadCatalog(catalogPath)
	require.NoError(t, err)
	require.NoError(t, catalog.RegisterForm(flows.FileCollectorForm{}))

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	store := history.NewStore(db)
	require.NoError(t, store.CreateTable(context.Background()))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	descriptors := descriptor.NewStore(dir)

	srv := httptest.NewServer(Router(Config{
		Log:         zap.NewNop(),
		Metrics:     m,
		Registry:    reg,
		Renderer:    semantic.NewRenderer(semantic.NewDefaultRegistry(), descriptors, m),
		Descriptors: descriptors,
		Catalog:     catalog,
		History:     store,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, body := getJSON(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRenderEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/v1/render",
		`{"value": {"type": "DurationSeconds", "value": 120}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	node := body["node"].(map[string]any)
	assert.Equal(t, "semantic", node["kind"])
	assert.Equal(t, "2m", node["display"])
}

func TestRenderEndpoint_Override(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/v1/render", `{
		"value": {"type": "DurationSeconds", "value": 120},
		"overrides": {
			"DurationSeconds": {"directive": "raw-seconds", "template": "<b>{{.Display}}</b>"}
		}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	node := body["node"].(map[string]any)
	assert.Equal(t, "<b>2m</b>", node["html"])
}

func TestDiffEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/v1/diff", `{
		"original": {"type": "Client", "value": {"hostname": {"type": "RDFString", "value": "a"}}},
		"updated":  {"type": "Client", "value": {"hostname": {"type": "RDFString", "value": "b"}}}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	original := body["original"].(map[string]any)
	hostname := original["value"].(map[string]any)["hostname"].(map[string]any)
	assert.Equal(t, "changed", hostname["_diff"])
}

func TestTypesEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/v1/types")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"Client"}, body["types"])

	resp, body = getJSON(t, srv.URL+"/v1/types/Client")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "struct", body["kind"])

	resp, _ = getJSON(t, srv.URL+"/v1/types/Nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFlowsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/v1/flows")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["flows"], 1)

	resp, body = postJSON(t, srv.URL+"/v1/flows/CollectFiles/args/validate",
		`{"args": {"paths": []}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["violations"])

	resp, body = postJSON(t, srv.URL+"/v1/flows/CollectFiles/args/convert",
		`{"state": {"paths": " /etc/hosts \n", "action": "stat", "max_file_size": "0", "match_literal": ""}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	args := body["args"].(map[string]any)
	assert.Equal(t, []any{"/etc/hosts"}, args["paths"])

	resp, _ = postJSON(t, srv.URL+"/v1/flows/Nope/args/validate", `{"args": {}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecordsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	record := `{"type": "Client", "value": {"hostname": {"type": "RDFString", "value": "%s"}}}`
	resp, body := postJSON(t, srv.URL+"/v1/records/snapshots/clients/C.1",
		strings.Replace(record, "%s", "box1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["version"])
	assert.Equal(t, "clients/C.1", body["path"])

	resp, _ = postJSON(t, srv.URL+"/v1/records/snapshots/clients/C.1",
		strings.Replace(record, "%s", "box2", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = getJSON(t, srv.URL+"/v1/records/versions/clients/C.1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["versions"], 2)

	resp, body = getJSON(t, srv.URL+"/v1/records/diff/clients/C.1?from=1&to=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := body["updated"].(map[string]any)
	hostname := updated["value"].(map[string]any)["hostname"].(map[string]any)
	assert.Equal(t, "changed", hostname["_diff"])

	resp, _ = getJSON(t, srv.URL+"/v1/records/diff/clients/C.1?from=1&to=9")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Drive a render so the counters have something to say.
	postJSON(t, srv.URL+"/v1/render", `{"value": {"type": "DurationSeconds", "value": 60}}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
