package schemafile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/schemafile"
)

const signupYAML = `
settings:
  ignore_unexpected: true
  remove_unexpected: true
params:
  - name: id
    type: integer
    required: true
    minvalue: 1
  - name: color
    type: string
    in: [red, green, blue]
  - name: per_page
    type: integer
    default: 20
  - name: user
    fields:
      - name: login
        type: string
        required: true
        maxlength: 8
        not_empty: true
      - name: zip
        type: string
        pattern: '^\d{5}$'
        format: NNNNN
      - name: age
        type: int
        check: value >= 18
`

const signupJSON = `{
  "params": [
    {"name": "id", "type": "integer", "required": true},
    {"name": "per_page", "type": "integer", "default": 20},
    {"name": "ratio", "type": "float", "in": [0.5, 1]},
    {"name": "user", "type": "namespace", "fields": [
      {"name": "login", "type": "string", "to": "username"}
    ]}
  ]
}`

func acceptor() *acceptparams.Acceptor {
	return acceptparams.NewAcceptor(acceptparams.WithLogger(zerolog.Nop()))
}

func TestParseYAML_Accept(t *testing.T) {
	doc, err := schemafile.Parse([]byte(signupYAML), schemafile.YAML)
	require.NoError(t, err)
	require.Len(t, doc.Params, 4)
	assert.True(t, doc.Params[3].IsNamespace())

	params := map[string]any{
		"id":    "7",
		"color": "red",
		"user":  map[string]any{"login": "ada", "zip": "94110", "age": "30"},
		"extra": "dropped",
	}
	require.NoError(t, doc.Accept(context.Background(), acceptor(), params))
	assert.Equal(t, int64(7), params["id"])
	assert.Equal(t, 20, params["per_page"])
	assert.NotContains(t, params, "extra")
	assert.Equal(t, int64(30), params["user"].(map[string]any)["age"])
}

func TestParseYAML_Failures(t *testing.T) {
	doc, err := schemafile.Parse([]byte(signupYAML), schemafile.YAML)
	require.NoError(t, err)

	cases := []struct {
		name   string
		params map[string]any
		code   acceptparams.Code
		param  string
	}{
		{"missing id", map[string]any{"user": map[string]any{"login": "a"}}, acceptparams.CodeMissingParam, "id"},
		{"small id", map[string]any{"id": "0", "user": map[string]any{"login": "a"}}, acceptparams.CodeInvalidValue, "id"},
		{"color", map[string]any{"id": "1", "color": "pink", "user": map[string]any{"login": "a"}}, acceptparams.CodeInvalidValue, "color"},
		{"long login", map[string]any{"id": "1", "user": map[string]any{"login": "abcdefghij"}}, acceptparams.CodeInvalidValue, "user[login]"},
		{"zip", map[string]any{"id": "1", "user": map[string]any{"login": "a", "zip": "1"}}, acceptparams.CodeInvalidValue, "user[zip]"},
		{"age check", map[string]any{"id": "1", "user": map[string]any{"login": "a", "age": "12"}}, acceptparams.CodeInvalidValue, "user[age]"},
		{"age type", map[string]any{"id": "1", "user": map[string]any{"login": "a", "age": "old"}}, acceptparams.CodeInvalidParamType, "user[age]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := doc.Accept(context.Background(), acceptor(), tc.params)
			e, ok := acceptparams.AsError(err)
			require.True(t, ok, "expected *Error, got %v", err)
			assert.Equal(t, tc.code, e.Code)
			assert.Equal(t, tc.param, e.Param)
		})
	}
}

func TestParseJSON_NormalizesNumbers(t *testing.T) {
	doc, err := schemafile.Parse([]byte(signupJSON), schemafile.JSON)
	require.NoError(t, err)
	assert.Nil(t, doc.Options())
	assert.Equal(t, int64(20), doc.Params[1].Default)
	assert.Equal(t, []any{0.5, int64(1)}, doc.Params[2].In)

	params := map[string]any{"id": 3, "ratio": "1", "user": map[string]any{"login": "ada"}}
	require.NoError(t, doc.Accept(context.Background(), acceptor(), params))
	assert.Equal(t, int64(20), params["per_page"])
	assert.Equal(t, float64(1), params["ratio"])
	assert.Equal(t, map[string]any{"username": "ada"}, params["user"])
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":       "params: []\n",
		"no name":     "params:\n  - type: string\n",
		"no type":     "params:\n  - name: a\n",
		"bad pattern": "params:\n  - name: a\n    type: string\n    pattern: '('\n",
		"bad yaml":    "params: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(content), schemafile.YAML)
			assert.Error(t, err)
		})
	}
}

func TestRules_DeclarationErrorsSurface(t *testing.T) {
	doc, err := schemafile.Parse([]byte("params:\n  - name: a\n    type: money\n"), schemafile.YAML)
	require.NoError(t, err)
	r := doc.Rules()
	assert.Equal(t, acceptparams.CodeInternal, acceptparams.CodeOf(r.Err()))
}

func TestRules_JSONSchema(t *testing.T) {
	doc, err := schemafile.Parse([]byte(signupYAML), schemafile.YAML)
	require.NoError(t, err)
	s, err := doc.Rules().JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, s.Required)
	assert.Equal(t, true, s.AdditionalProperties)
	assert.Equal(t, "integer", s.Properties["per_page"].Type)
	assert.Equal(t, `^\d{5}$`, s.Properties["user"].Properties["zip"].Pattern)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	inputPath := filepath.Join(dir, "input.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(signupJSON), 0o644))
	require.NoError(t, os.WriteFile(inputPath, []byte("id: 5\nuser:\n  login: bob\n"), 0o644))

	doc, err := schemafile.Load(schemaPath)
	require.NoError(t, err)
	params, err := schemafile.LoadParams(inputPath)
	require.NoError(t, err)
	require.NoError(t, doc.Accept(context.Background(), acceptor(), params))
	assert.Equal(t, int64(5), params["id"])

	_, err = schemafile.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseParams_JSON(t *testing.T) {
	params, err := schemafile.ParseParams([]byte(`{"n": 12, "f": 1.5, "tags": [1, "a"], "user": {"id": 3}}`), schemafile.JSON)
	require.NoError(t, err)
	assert.Equal(t, int64(12), params["n"])
	assert.Equal(t, 1.5, params["f"])
	assert.Equal(t, []any{int64(1), "a"}, params["tags"])
	assert.Equal(t, map[string]any{"id": int64(3)}, params["user"])

	_, err = schemafile.ParseParams([]byte(`[1,2]`), schemafile.JSON)
	assert.Error(t, err)
}

func TestDuplicateKey(t *testing.T) {
	cases := []struct {
		in  string
		key string
		dup bool
	}{
		{`{"a":1,"b":2}`, "", false},
		{`{"a":1,"a":2}`, "a", true},
		{`{"user":{"login":"x","tags":["a","b"],"login":"y"}}`, "user[login]", true},
		{`{"list":[{"k":1},{"k":2}],"k":3}`, "", false},
		{`{"list":[{"k":1,"k":2}]}`, "list[k]", true},
		{`{"a":{"b":{}},"c":{"b":1}}`, "", false},
	}
	for _, tc := range cases {
		key, dup, err := schemafile.DuplicateKey([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.dup, dup, tc.in)
		assert.Equal(t, tc.key, key, tc.in)
	}

	_, err := schemafile.ParseParams([]byte(`{"id":1,"id":2}`), schemafile.JSON)
	assert.ErrorContains(t, err, `duplicate key "id"`)
}
