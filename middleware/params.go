package middleware

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nateware/accept-params/schemafile"
)

// ErrBodyTooLarge is returned when a JSON body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

const multipartMemory = 32 << 20

// ParamsFromRequest collects the request's params into one mapping: query
// and form values, chi URL params, then the members of a JSON object body.
// Later sources override earlier ones. Bracketed form keys such as
// "user[login]" and "tags[]" are expanded into nested maps and lists.
func ParamsFromRequest(r *http.Request, maxBody int64) (map[string]any, error) {
	params := map[string]any{}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	isJSON := ct == "application/json" || strings.HasSuffix(ct, "+json")

	if isJSON {
		// the body is read below, so only the query string is parsed here
		mergeValues(params, r.URL.Query())
	} else {
		var err error
		if ct == "multipart/form-data" {
			err = r.ParseMultipartForm(multipartMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		mergeValues(params, r.Form)
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			params[k] = rctx.URLParams.Values[i]
		}
	}

	if isJSON && r.Body != nil && r.Body != http.NoBody {
		body, err := readBody(r, maxBody)
		if err != nil {
			return nil, err
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			doc, err := schemafile.ParseParams(body, schemafile.JSON)
			if err != nil {
				return nil, fmt.Errorf("decode body: %w", err)
			}
			for k, v := range doc {
				params[k] = v
			}
		}
	}
	return params, nil
}

func readBody(r *http.Request, maxBody int64) ([]byte, error) {
	var rd io.Reader = r.Body
	if maxBody > 0 {
		rd = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func mergeValues(params map[string]any, values map[string][]string) {
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		path, list := splitKey(key)
		var v any = vals[len(vals)-1]
		if list {
			seq := make([]any, len(vals))
			for i, s := range vals {
				seq[i] = s
			}
			v = seq
		}
		assign(params, path, v)
	}
}

// splitKey turns "a[b][c]" into [a b c] and reports a trailing "[]".
func splitKey(key string) ([]string, bool) {
	list := strings.HasSuffix(key, "[]")
	key = strings.TrimSuffix(key, "[]")
	head, rest, found := strings.Cut(key, "[")
	if !found || head == "" {
		return []string{key}, list
	}
	path := []string{head}
	for rest != "" {
		seg, after, ok := strings.Cut(rest, "]")
		if !ok {
			// unbalanced brackets: keep the raw key
			return []string{key}, list
		}
		path = append(path, seg)
		rest = strings.TrimPrefix(after, "[")
	}
	return path, list
}

func assign(params map[string]any, path []string, v any) {
	m := params
	for _, seg := range path[:len(path)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
