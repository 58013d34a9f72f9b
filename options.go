package acceptparams

import (
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Options is the declaration record of a single parameter.
type Options struct {
	Required bool
	// Default is a literal used when the parameter is absent. HasDefault
	// tells a nil/zero default apart from no default.
	Default    any
	HasDefault bool
	// DefaultFunc produces the default lazily; it runs at most once per
	// validation and only when the parameter is absent. It wins over Default.
	DefaultFunc func() (any, error)
	// To renames the parameter in the output mapping.
	To string
	// Process replaces type coercion entirely. Its result is trusted.
	Process func(v any) (any, error)

	MinValue  *float64
	MaxValue  *float64
	In        []any
	MaxLength int
	Pattern   *regexp.Regexp
	// Format names Pattern in error messages (e.g. "YYYY-MM-DD").
	Format string
	// NotEmpty rejects a nil or empty string value after coercion.
	NotEmpty bool
	// Check is a boolean expr-lang expression evaluated with the coerced
	// value bound to "value" (e.g. "value % 2 == 0").
	Check string

	program *vm.Program
}

// hasDefault reports whether a default (literal or produced) is declared.
func (o *Options) hasDefault() bool { return o.HasDefault || o.DefaultFunc != nil }

func (o *Options) compile() error {
	if o.Check == "" || o.program != nil {
		return nil
	}
	p, err := expr.Compile(o.Check)
	if err != nil {
		return err
	}
	o.program = p
	return nil
}

// FieldOption configures the Options of a declared parameter.
type FieldOption func(*Options)

// Required marks the parameter as mandatory.
func Required() FieldOption { return func(o *Options) { o.Required = true } }

// RequiredIf marks the parameter as mandatory when b is true.
func RequiredIf(b bool) FieldOption { return func(o *Options) { o.Required = b } }

// Default sets a literal default.
func Default(v any) FieldOption {
	return func(o *Options) {
		o.Default = v
		o.HasDefault = true
	}
}

// DefaultFunc sets a lazily evaluated default.
func DefaultFunc(fn func() (any, error)) FieldOption {
	return func(o *Options) { o.DefaultFunc = fn }
}

// To renames the parameter to name in the validated output.
func To(name string) FieldOption { return func(o *Options) { o.To = name } }

// Process transforms the raw value instead of coercing it.
func Process(fn func(v any) (any, error)) FieldOption {
	return func(o *Options) { o.Process = fn }
}

// MinValue sets an inclusive lower bound.
func MinValue(n float64) FieldOption { return func(o *Options) { o.MinValue = &n } }

// MaxValue sets an inclusive upper bound.
func MaxValue(n float64) FieldOption { return func(o *Options) { o.MaxValue = &n } }

// In restricts the value to the given set. Numbers compare by value across
// numeric types, so In(1, 2) accepts an integer parameter coerced to int64.
func In(values ...any) FieldOption {
	return func(o *Options) { o.In = append([]any(nil), values...) }
}

// MaxLength bounds the length of the value (characters, or elements for
// arrays).
func MaxLength(n int) FieldOption { return func(o *Options) { o.MaxLength = n } }

// Pattern requires the string form of the value to match re.
func Pattern(re *regexp.Regexp) FieldOption { return func(o *Options) { o.Pattern = re } }

// Format names the expected format in pattern errors.
func Format(name string) FieldOption { return func(o *Options) { o.Format = name } }

// NotEmpty rejects nil and empty-string values.
func NotEmpty() FieldOption { return func(o *Options) { o.NotEmpty = true } }

// Check adds a boolean expression over "value".
func Check(expression string) FieldOption { return func(o *Options) { o.Check = expression } }
