package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/middleware"
)

func echoParams(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, middleware.Params(r))
}

func newRouter(mw *middleware.Middleware) http.Handler {
	r := chi.NewRouter()
	r.With(mw.AcceptOnlyID()).Get("/users/{id}", echoParams)
	r.With(mw.AcceptNone()).Get("/ping", echoParams)
	r.With(mw.Accept(func(p *acceptparams.Rules) {
		p.Namespace("user", func(u *acceptparams.Rules) {
			u.String("login", acceptparams.Required(), acceptparams.MaxLength(8))
			u.Boolean("admin", acceptparams.Default(false))
		})
		p.Array("tags")
		p.Integer("page", acceptparams.MinValue(1), acceptparams.Default(int64(1)))
	})).Post("/users", echoParams)
	r.With(mw.Accept(func(p *acceptparams.Rules) {
		p.String("a")
		p.String("a")
	})).Get("/broken", echoParams)
	return r
}

func newMiddleware(opts ...middleware.Option) *middleware.Middleware {
	a := acceptparams.NewAcceptor(acceptparams.WithLogger(zerolog.Nop()))
	return middleware.New(append([]middleware.Option{middleware.WithAcceptor(a)}, opts...)...)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAcceptOnlyID_URLParam(t *testing.T) {
	h := newRouter(newMiddleware())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"id": float64(42)}, decode(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "invalid_type", body["code"])
	assert.Equal(t, "/id", body["pointer"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1?extra=1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "unexpected_param", body["code"])
	assert.Equal(t, []any{"extra"}, body["keys"])
}

func TestAcceptNone_IgnoresFrameworkParams(t *testing.T) {
	h := newRouter(newMiddleware())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping?format=json", nil))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAccept_JSONBody(t *testing.T) {
	h := newRouter(newMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/users?page=2", strings.NewReader(`{"user":{"login":"ada"},"tags":["x","y"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{
		"user": map[string]any{"login": "ada", "admin": false},
		"tags": []any{"x", "y"},
		"page": float64(2),
	}, decode(t, rec))

	req = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"user":{}}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "missing_param", body["code"])
	assert.Equal(t, "user[login]", body["param"])
	assert.Equal(t, "/user/login", body["pointer"])
}

func TestAccept_FormBrackets(t *testing.T) {
	h := newRouter(newMiddleware())

	form := url.Values{}
	form.Set("user[login]", "bob")
	form.Set("user[admin]", "1")
	form.Add("tags[]", "a")
	form.Add("tags[]", "b")
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{
		"user": map[string]any{"login": "bob", "admin": true},
		"tags": []any{"a", "b"},
		"page": float64(1),
	}, decode(t, rec))
}

func TestAccept_ErrorStatuses(t *testing.T) {
	h := newRouter(newMiddleware(middleware.WithMaxBodyBytes(16)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"user":{"login":"a-very-long-name"}}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"user":`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decode(t, rec)["error"].(map[string]any)["code"])
}

func TestWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	a := acceptparams.NewAcceptor(acceptparams.WithLogger(zerolog.Nop()))
	mw := middleware.New(middleware.WithAcceptor(a), middleware.WithRequestLogger(zerolog.New(&buf)))
	h := newRouter(mw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), `"method":"GET"`)
	assert.Contains(t, buf.String(), `"path":"/users/x"`)
	assert.Contains(t, buf.String(), `"code":"invalid_type"`)
}

func TestParamsFromRequest_NestedQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?a%5Bb%5D%5Bc%5D=1&plain=2&bad%5Bx=3", nil)
	params, err := middleware.ParamsFromRequest(req, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":     map[string]any{"b": map[string]any{"c": "1"}},
		"plain": "2",
		"bad[x": "3",
	}, params)

	_, ok := middleware.ParamsFromContext(req.Context())
	assert.False(t, ok)
}
