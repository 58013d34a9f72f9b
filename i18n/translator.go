package i18n

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Message keys used by the validation engine.
const (
	NoParamsDefined = "no_params_defined"
	MissingParam    = "missing_param"
	UnexpectedParam = "unexpected_param"
	WrongType       = "wrong_type"
	UnexpectedHash  = "unexpected_hash"
	ExpectedHash    = "expected_hash"
	NullOrMissing   = "null_or_missing"
	ProducerFailed  = "producer_failed"
	TooSmall        = "too_small"
	TooBig          = "too_big"
	NotNumeric      = "not_numeric"
	NotInSet        = "not_in_set"
	TooLong         = "too_long"
	BadFormat       = "bad_format"
	CheckFailed     = "check_failed"
	UnknownType     = "unknown_type"
	DuplicateParam  = "duplicate_param"
	RenameClash     = "rename_clash"
	MissingBlock    = "missing_block"
	EmptyName       = "empty_name"
	BadCheck        = "bad_check"
	ModelColumns    = "model_columns"
	NilParams       = "nil_params"
)

// Translator retrieves localized messages for message keys.
// data provides values substituted for {name} placeholders (for example,
// "param" or "value").
type Translator interface {
	Message(key string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		NoParamsDefined: "Missing block for accept_params",
		MissingParam:    "Request params missing required parameter '{param}'",
		UnexpectedParam: "Request included unexpected parameter(s): {keys}",
		WrongType:       "Value for parameter '{param}' ({value}) is of the wrong type (expected {expected})",
		UnexpectedHash:  "Request parameter '{param}' is a hash, but wasn't expecting it",
		ExpectedHash:    "Expected parameter '{param}' to be a nested hash",
		NullOrMissing:   "Value for parameter '{param}' is null or missing",
		ProducerFailed:  "{cause}",
		TooSmall:        "Value for parameter '{param}' ({value}) is less than minimum value ({min})",
		TooBig:          "Value for parameter '{param}' ({value}) is more than maximum value ({max})",
		NotNumeric:      "Value for parameter '{param}' ({value}) is not numeric",
		NotInSet:        "Value for parameter '{param}' ({value}) is not in the allowed set of values",
		TooLong:         "Length of parameter '{param}' ({length}) is longer than maximum length ({maxlength})",
		BadFormat:       "Invalid value for parameter '{param}'{format}",
		CheckFailed:     "Value for parameter '{param}' ({value}) does not satisfy {check}",
		UnknownType:     "Internal error: Missing validation for param type {type}",
		DuplicateParam:  "Internal error: parameter '{param}' declared more than once",
		RenameClash:     "Internal error: parameter '{param}' is renamed to '{to}', which is already declared",
		MissingBlock:    "Internal error: missing block to param namespace declaration '{param}'",
		EmptyName:       "Internal error: parameter name must not be empty",
		BadCheck:        "Internal error: invalid check expression for parameter '{param}': {cause}",
		ModelColumns:    "Internal error: could not read model columns: {cause}",
		NilParams:       "Internal error: params mapping is nil",
	},
	"ja": {
		NoParamsDefined: "accept_params のブロックがありません",
		MissingParam:    "必須パラメータ '{param}' がありません",
		UnexpectedParam: "想定外のパラメータがあります: {keys}",
		WrongType:       "パラメータ '{param}' ({value}) の型が不正です (期待: {expected})",
		UnexpectedHash:  "パラメータ '{param}' はハッシュを受け付けません",
		ExpectedHash:    "パラメータ '{param}' はネストしたハッシュである必要があります",
		NullOrMissing:   "パラメータ '{param}' の値が空か不足しています",
		ProducerFailed:  "{cause}",
		TooSmall:        "パラメータ '{param}' ({value}) が最小値 ({min}) 未満です",
		TooBig:          "パラメータ '{param}' ({value}) が最大値 ({max}) を超えています",
		NotNumeric:      "パラメータ '{param}' ({value}) は数値ではありません",
		NotInSet:        "パラメータ '{param}' ({value}) は許可された値ではありません",
		TooLong:         "パラメータ '{param}' の長さ ({length}) が最大長 ({maxlength}) を超えています",
		BadFormat:       "パラメータ '{param}' の値が不正です{format}",
		CheckFailed:     "パラメータ '{param}' ({value}) が条件 {check} を満たしません",
	},
}

// dictTranslator is the built-in dictionary-based Translator. Keys missing
// from a non-English catalog fall back to English.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(key string, data map[string]string) string {
	tmpl, ok := catalogs[t.lang][key]
	if !ok {
		tmpl, ok = catalogs["en"][key]
	}
	if !ok {
		return key
	}
	return Render(tmpl, data)
}

// Render substitutes {name} placeholders in tmpl with values from data.
// Unknown placeholders are left as-is.
func Render(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	names := make([]string, 0, len(data))
	for k := range data {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). A nil Translator restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given key using the current Translator.
func T(key string, data map[string]string) string { return current.Load().tr.Message(key, data) }
