package acceptparams

import (
	"fmt"

	"github.com/nateware/accept-params/i18n"
)

// Validate checks params against the declared tree and rewrites it in
// place: values are coerced to their declared types, defaults are filled
// in, renamed keys are moved and, with RemoveUnexpected, undeclared keys
// are deleted. Validation stops at the first failure and returns an *Error.
//
// params must not be read or written concurrently while Validate runs.
func (r *Rules) Validate(params map[string]any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if params == nil {
		return internalError("", i18n.NilParams)
	}
	return r.validate(params)
}

func (r *Rules) validate(params map[string]any) error {
	recognized, err := r.validateChildren(params)
	if err != nil {
		return err
	}
	var unexpected []string
	for k := range params {
		if _, ok := recognized[k]; ok {
			continue
		}
		// only the top level tolerates framework-injected keys
		if r.parent == nil && r.settings.ignoresParam(k) {
			continue
		}
		unexpected = append(unexpected, k)
	}
	if len(unexpected) == 0 {
		return nil
	}
	if !r.settings.IgnoreUnexpected {
		keys := make([]string, len(unexpected))
		for i, k := range unexpected {
			keys[i] = r.keyPath(k)
		}
		return unexpectedParams(keys)
	}
	if r.settings.RemoveUnexpected {
		for _, k := range unexpected {
			delete(params, k)
		}
	}
	return nil
}

// validateChildren resolves every declared child against params and
// returns the keys it recognized, renamed keys included.
func (r *Rules) validateChildren(params map[string]any) (map[string]struct{}, error) {
	recognized := make(map[string]struct{}, len(r.children))
	for _, c := range r.children {
		if err := c.resolve(params, recognized); err != nil {
			return nil, err
		}
	}
	return recognized, nil
}

func (r *Rules) resolve(params map[string]any, recognized map[string]struct{}) error {
	raw, present := params[r.name]
	switch {
	case r.kind == KindNamespace:
		recognized[r.name] = struct{}{}
		if raw == nil {
			// holder for defaults of the nested fields
			raw = map[string]any{}
			params[r.name] = raw
		}
		sub, ok := raw.(map[string]any)
		if !ok {
			return newError(CodeInvalidParamType, r.CanonicalName(), i18n.ExpectedHash, "value", raw)
		}
		if err := r.validate(sub); err != nil {
			return err
		}
	case present:
		recognized[r.name] = struct{}{}
		if _, nested := raw.(map[string]any); nested {
			return newError(CodeInvalidParamType, r.CanonicalName(), i18n.UnexpectedHash)
		}
		if err := r.cast(params); err != nil {
			return err
		}
	case r.options.Required && !r.options.hasDefault():
		return missingParam(r.CanonicalName())
	default:
		recognized[r.name] = struct{}{}
		if err := r.cast(params); err != nil {
			return err
		}
	}

	if to := r.options.To; to != "" {
		if v, ok := params[r.name]; ok {
			delete(params, r.name)
			params[to] = v
		}
		recognized[to] = struct{}{}
	}
	return nil
}

// cast validates and coerces the value of field r inside params, writing
// the result back under r's own key.
func (r *Rules) cast(params map[string]any) error {
	if r.kind == KindNamespace {
		return nil
	}
	path := r.CanonicalName()
	o := &r.options
	value := params[r.name]

	if value == nil && o.To != "" && params[o.To] != nil {
		// already renamed and processed by an earlier request (paginated
		// links carry the output key)
		params[r.name] = params[o.To]
		return nil
	}

	if value == nil {
		switch {
		case o.DefaultFunc != nil:
			v, err := produce(o.DefaultFunc)
			if err != nil {
				return producerFailed(path, err)
			}
			value = v
		case o.HasDefault:
			value = o.Default
		case o.Required:
			return newError(CodeInvalidValue, path, i18n.NullOrMissing)
		default:
			return nil
		}
		params[r.name] = value
		return nil
	}

	if o.Process != nil {
		v, err := transform(o.Process, value)
		if err != nil {
			return producerFailed(path, err)
		}
		params[r.name] = v
		return nil
	}

	v, err := r.coerce(path, value)
	if err != nil {
		return err
	}
	params[r.name] = v
	return nil
}

func (r *Rules) coerce(path string, value any) (any, error) {
	if r.typ == TypeArray {
		seq, ok := toSequence(value)
		if !ok {
			return nil, wrongType(path, value, r.typ)
		}
		if err := checkMaxLength(path, seq, &r.options); err != nil {
			return nil, err
		}
		return seq, nil
	}

	s, ok := scalarString(value)
	if !ok {
		return nil, wrongType(path, value, r.typ)
	}
	match, err := r.typ.recognize(s)
	if err != nil {
		return nil, internalError(path, i18n.UnknownType, "type", r.typ.String())
	}
	if !match {
		return nil, wrongType(path, value, r.typ)
	}
	v, err := r.typ.coerce(value, s)
	if err != nil {
		return nil, wrongType(path, value, r.typ)
	}
	if err := runConstraints(path, v, &r.options); err != nil {
		return nil, err
	}
	return v, nil
}

func produce(fn func() (any, error)) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return fn()
}

func transform(fn func(any) (any, error), in any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return fn(in)
}
