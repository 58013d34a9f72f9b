// Package middleware validates HTTP request params with net/http
// middleware. It is router-agnostic and picks up chi URL params when the
// request was routed by chi.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	acceptparams "github.com/nateware/accept-params"
)

// ctxKeyParams is a typed context key for the validated params.
type ctxKeyParams struct{}

// ContextWithParams attaches validated params to the context.
func ContextWithParams(ctx context.Context, params map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyParams{}, params)
}

// ParamsFromContext retrieves validated params from the context.
func ParamsFromContext(ctx context.Context) (map[string]any, bool) {
	v, ok := ctx.Value(ctxKeyParams{}).(map[string]any)
	return v, ok
}

// Params is ParamsFromContext for handlers that run behind Accept; it
// returns an empty mapping when none was stored.
func Params(r *http.Request) map[string]any {
	if p, ok := ParamsFromContext(r.Context()); ok {
		return p
	}
	return map[string]any{}
}

// Middleware builds validating handlers around one Acceptor.
type Middleware struct {
	acceptor *acceptparams.Acceptor
	logger   *zerolog.Logger
	maxBody  int64
}

// Option configures a Middleware.
type Option func(*Middleware)

// WithAcceptor sets the Acceptor; the package default is used otherwise.
func WithAcceptor(a *acceptparams.Acceptor) Option {
	return func(m *Middleware) { m.acceptor = a }
}

// WithRequestLogger attaches a per-request child of l (method and path) to
// the request context, where the Acceptor logs failures.
func WithRequestLogger(l zerolog.Logger) Option {
	return func(m *Middleware) { m.logger = &l }
}

// WithMaxBodyBytes caps JSON bodies; 0 disables the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(m *Middleware) { m.maxBody = n }
}

// New returns a Middleware. JSON bodies are capped at 1 MiB by default.
func New(opts ...Option) *Middleware {
	m := &Middleware{maxBody: 1 << 20}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Accept validates the request params against the tree built by declare.
// On success the rewritten params are stored in the request context and
// next runs; otherwise an error payload is written.
func (m *Middleware) Accept(declare func(*acceptparams.Rules), opts ...acceptparams.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if m.logger != nil {
				ctx = m.logger.With().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Logger().WithContext(ctx)
			}

			params, err := ParamsFromRequest(r, m.maxBody)
			if err != nil {
				WriteError(w, err)
				return
			}
			if err := m.acceptorOrDefault().Accept(ctx, params, declare, opts...); err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithParams(ctx, params)))
		})
	}
}

// AcceptNone rejects requests carrying any param besides the ignored ones.
func (m *Middleware) AcceptNone(opts ...acceptparams.Option) func(http.Handler) http.Handler {
	return m.Accept(func(*acceptparams.Rules) {}, opts...)
}

// AcceptOnlyID accepts a single required integer "id", typically a chi URL
// param.
func (m *Middleware) AcceptOnlyID(opts ...acceptparams.Option) func(http.Handler) http.Handler {
	return m.Accept(func(p *acceptparams.Rules) { p.Integer("id", acceptparams.Required()) }, opts...)
}

func (m *Middleware) acceptorOrDefault() *acceptparams.Acceptor {
	if m.acceptor != nil {
		return m.acceptor
	}
	return acceptparams.DefaultAcceptor()
}

// ErrorPayload shapes a validation error for JSON responses.
func ErrorPayload(err error) map[string]any {
	e, ok := acceptparams.AsError(err)
	if !ok {
		return map[string]any{"error": map[string]any{"code": "bad_request", "message": err.Error()}}
	}
	body := map[string]any{"code": e.Code, "message": e.Error()}
	if e.Param != "" {
		body["param"] = e.Param
		body["pointer"] = acceptparams.Pointer(e.Param)
	}
	if len(e.Keys) > 0 {
		body["keys"] = e.Keys
	}
	return map[string]any{"error": body}
}

// StatusOf maps an error to its HTTP status: 500 for broken declarations,
// 413 for oversized bodies and 400 for everything else.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case acceptparams.CodeOf(err) == acceptparams.CodeInternal && isValidationError(err):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func isValidationError(err error) bool {
	_, ok := acceptparams.AsError(err)
	return ok
}

// WriteError writes ErrorPayload(err) with StatusOf(err).
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusOf(err), ErrorPayload(err))
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
