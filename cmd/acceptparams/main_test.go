package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/config"
	"github.com/nateware/accept-params/metrics"
	"github.com/nateware/accept-params/schemafile"
)

const testSchema = `
params:
  - name: id
    type: integer
    required: true
  - name: user
    fields:
      - name: login
        type: string
        required: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(acceptparams.ResetDefaults)
	color.NoColor = true

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "acceptparams version dev\n", out)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", testSchema)
	good := writeFile(t, dir, "good.json", `{"id": "5", "user": {"login": "ada"}}`)
	bad := writeFile(t, dir, "bad.yaml", "id: 5\nuser: {}\n")

	out, err := execute(t, "check", "--schema", schema, good)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK\n"), out)
	assert.Contains(t, out, `"id": 5`)

	out, err = execute(t, "check", "-s", schema, "-q", bad)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "FAIL missing_param Request params missing required parameter 'user[login]'")

	_, err = execute(t, "check", good)
	assert.Error(t, err)
}

func TestCheck_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", testSchema)
	input := writeFile(t, dir, "input.yaml", "id: 1\nuser:\n  login: a\nextra: x\n")
	cfg := writeFile(t, dir, "config.yaml", "accept_params:\n  ignore_unexpected: true\nlogging:\n  level: error\n")

	_, err := execute(t, "check", "-s", schema, input)
	assert.ErrorIs(t, err, errCheckFailed)

	out, err := execute(t, "--config", cfg, "check", "-s", schema, input)
	require.NoError(t, err)
	assert.Contains(t, out, `"extra": "x"`)
}

func TestSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", testSchema)

	out, err := execute(t, "schema", schema)
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
	assert.Contains(t, out, `"required": [`)

	out, err = execute(t, "schema", "--yaml", schema)
	require.NoError(t, err)
	assert.Contains(t, out, "type: object")
}

func TestServer(t *testing.T) {
	t.Cleanup(acceptparams.ResetDefaults)
	doc, err := schemafile.Parse([]byte(testSchema), schemafile.YAML)
	require.NoError(t, err)
	cfg := config.Default()
	reg := prometheus.NewRegistry()
	collector := metrics.NewWithRegistry(reg, cfg.Metrics.Namespace)
	srv := httptest.NewServer(newServer(doc, cfg, zerolog.Nop(), reg, collector))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/validate?id=3", "application/json", strings.NewReader(`{"user":{"login":"ada"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/validate", "application/json", strings.NewReader(`{"user":{"login":"ada"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Contains(t, body.String(), `accept_params_validations_total{code="ok"} 1`)
	assert.Contains(t, body.String(), `accept_params_validations_total{code="missing_param"} 1`)
}
