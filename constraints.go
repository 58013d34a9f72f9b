package acceptparams

import (
	"reflect"
	"unicode/utf8"

	"github.com/expr-lang/expr"

	"github.com/nateware/accept-params/i18n"
)

// constraint is one extended check applied after coercion. It returns nil
// when the value passes or when the constraint is not declared.
type constraint func(path string, v any, o *Options) *Error

// constraints run in this order; the first failure wins.
var constraints = []constraint{
	checkMinValue,
	checkMaxValue,
	checkIn,
	checkMaxLength,
	checkPattern,
	checkNotEmpty,
	checkExpr,
}

func runConstraints(path string, v any, o *Options) error {
	for _, c := range constraints {
		if err := c(path, v, o); err != nil {
			return err
		}
	}
	return nil
}

func checkMinValue(path string, v any, o *Options) *Error {
	if o.MinValue == nil {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return newError(CodeInvalidValue, path, i18n.NotNumeric, "value", v)
	}
	if f < *o.MinValue {
		return newError(CodeInvalidValue, path, i18n.TooSmall, "value", v, "min", *o.MinValue)
	}
	return nil
}

func checkMaxValue(path string, v any, o *Options) *Error {
	if o.MaxValue == nil {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return newError(CodeInvalidValue, path, i18n.NotNumeric, "value", v)
	}
	if f > *o.MaxValue {
		return newError(CodeInvalidValue, path, i18n.TooBig, "value", v, "max", *o.MaxValue)
	}
	return nil
}

func checkIn(path string, v any, o *Options) *Error {
	if o.In == nil {
		return nil
	}
	for _, allowed := range o.In {
		if sameValue(v, allowed) {
			return nil
		}
	}
	return newError(CodeInvalidValue, path, i18n.NotInSet, "value", v, "in", o.In)
}

func checkMaxLength(path string, v any, o *Options) *Error {
	if o.MaxLength <= 0 {
		return nil
	}
	n := valueLength(v)
	if n > o.MaxLength {
		return newError(CodeInvalidValue, path, i18n.TooLong, "value", v, "length", n, "maxlength", o.MaxLength)
	}
	return nil
}

func checkPattern(path string, v any, o *Options) *Error {
	if o.Pattern == nil {
		return nil
	}
	s, ok := scalarString(v)
	if ok && o.Pattern.MatchString(s) {
		return nil
	}
	format := ""
	if o.Format != "" {
		format = " (format: " + o.Format + ")"
	}
	e := newError(CodeInvalidValue, path, i18n.BadFormat, "format", format)
	e.Value = v
	return e
}

func checkNotEmpty(path string, v any, o *Options) *Error {
	if !o.NotEmpty {
		return nil
	}
	if s, isStr := v.(string); v == nil || (isStr && s == "") {
		return newError(CodeInvalidValue, path, i18n.NullOrMissing)
	}
	return nil
}

func checkExpr(path string, v any, o *Options) *Error {
	if o.program == nil {
		return nil
	}
	out, err := expr.Run(o.program, map[string]any{"value": v})
	if ok, isBool := out.(bool); err == nil && isBool && ok {
		return nil
	}
	e := newError(CodeInvalidValue, path, i18n.CheckFailed, "value", v, "check", o.Check)
	e.Cause = err
	return e
}

// sameValue compares numbers by value regardless of their Go type and
// everything else with reflect.DeepEqual.
func sameValue(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func valueLength(v any) int {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t)
	case []any:
		return len(t)
	case []byte:
		return len(t)
	}
	if s, ok := scalarString(v); ok {
		return utf8.RuneCountInString(s)
	}
	return 0
}
