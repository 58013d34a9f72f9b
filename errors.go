package acceptparams

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nateware/accept-params/i18n"
)

// Code classifies an *Error.
type Code string

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeNoParamsDefined  Code = "no_params_defined"
	CodeMissingParam     Code = "missing_param"
	CodeUnexpectedParam  Code = "unexpected_param"
	CodeInvalidParamType Code = "invalid_type"
	CodeInvalidValue     Code = "invalid_value"
	// CodeInternal reports a broken declaration (unknown type tag, duplicate
	// sibling, ...), not bad input data.
	CodeInternal Code = "internal"
)

// Sentinels for errors.Is. Matching is by Code only.
var (
	ErrNoParamsDefined   = &Error{Code: CodeNoParamsDefined}
	ErrMissingParam      = &Error{Code: CodeMissingParam}
	ErrUnexpectedParam   = &Error{Code: CodeUnexpectedParam}
	ErrInvalidParamType  = &Error{Code: CodeInvalidParamType}
	ErrInvalidParamValue = &Error{Code: CodeInvalidValue}
	ErrInternal          = &Error{Code: CodeInternal}
)

// Error is the single error type returned by validation. Validation is
// fail-fast, so one Error describes the first failure encountered.
type Error struct {
	Code Code
	// Param is the canonical name of the offending parameter (for example
	// "user[login]"). Empty for whole-request errors.
	Param string
	// Keys lists the offending keys of an unexpected_param error, already
	// rendered as canonical names.
	Keys  []string
	Value any
	// Message is the rendered, human readable text.
	Message string
	// Params carries structured values (e.g., {"min":1, "got":0}) for i18n and
	// observability.
	Params map[string]any
	// Cause is the underlying error of a failing default producer or process
	// transform.
	Cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Param != "" {
		return fmt.Sprintf("%s at %s", e.Code, e.Param)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the Code of err, CodeInternal for foreign errors and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return CodeInternal
}

// newError renders msgKey through the i18n catalog. kv holds alternating
// placeholder names and values; they are kept in Params as given and
// stringified for the message.
func newError(code Code, param string, msgKey string, kv ...any) *Error {
	params := map[string]any{}
	data := map[string]string{}
	if param != "" {
		data["param"] = param
	}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		params[k] = kv[i+1]
		data[k] = display(kv[i+1])
	}
	e := &Error{Code: code, Param: param, Message: i18n.T(msgKey, data), Params: params}
	if v, ok := params["value"]; ok {
		e.Value = v
	}
	return e
}

func missingParam(path string) *Error {
	return newError(CodeMissingParam, path, i18n.MissingParam)
}

func unexpectedParams(keys []string) *Error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	e := newError(CodeUnexpectedParam, "", i18n.UnexpectedParam, "keys", strings.Join(sorted, ", "))
	e.Keys = sorted
	return e
}

func wrongType(path string, value any, t Type) *Error {
	return newError(CodeInvalidParamType, path, i18n.WrongType, "value", value, "expected", t.String())
}

func producerFailed(path string, cause error) *Error {
	e := newError(CodeInvalidValue, path, i18n.ProducerFailed, "cause", cause.Error())
	e.Cause = cause
	return e
}

func internalError(path string, msgKey string, kv ...any) *Error {
	return newError(CodeInternal, path, msgKey, kv...)
}

// display renders v the way it is shown inside messages.
func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, el := range t {
			parts[i] = display(el)
		}
		return strings.Join(parts, ",")
	}
	if s, ok := scalarString(v); ok {
		return s
	}
	return fmt.Sprint(v)
}
