package acceptparams

import (
	"slices"

	"github.com/nateware/accept-params/i18n"
)

// Kind tells the root, namespaces and fields of a declared tree apart.
type Kind int

const (
	KindRoot Kind = iota
	KindNamespace
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindNamespace:
		return "namespace"
	case KindField:
		return "field"
	}
	return "unknown"
}

// Rules declares the expected structure of a params mapping. A root is
// created with NewRules; namespaces and fields are appended through the
// declaration methods, which return the receiver so calls can be chained.
//
// Declaration never panics: the first declaration error is recorded on the
// root, reported by Err and returned by Validate.
type Rules struct {
	name     string
	kind     Kind
	typ      Type
	options  Options
	children []*Rules
	// parent is only used to render CanonicalName.
	parent   *Rules
	settings *Settings
	err      error
}

// NewRules creates a root whose settings are the process-wide defaults
// overridden by opts.
func NewRules(opts ...Option) *Rules {
	return &Rules{kind: KindRoot, settings: resolveSettings(opts)}
}

func (r *Rules) Name() string { return r.name }
func (r *Rules) Kind() Kind   { return r.kind }

// Type returns the declared type of a field, 0 for the root and namespaces.
func (r *Rules) Type() Type { return r.typ }

// Options returns a copy of the declaration record.
func (r *Rules) Options() Options { return r.options }

// Children returns the declared children in declaration order.
func (r *Rules) Children() []*Rules { return slices.Clone(r.children) }

func (r *Rules) Parent() *Rules { return r.parent }

// Settings returns a copy of the settings the tree validates under.
func (r *Rules) Settings() Settings { return r.settings.clone() }

func (r *Rules) IsNamespace() bool { return r.kind == KindNamespace }
func (r *Rules) IsRequired() bool  { return r.options.Required }

// Err returns the first declaration error recorded in the tree.
func (r *Rules) Err() error { return r.root().err }

func (r *Rules) root() *Rules {
	n := r
	for n.parent != nil {
		n = n.parent
	}
	return n
}

func (r *Rules) fail(err *Error) {
	if root := r.root(); root.err == nil {
		root.err = err
	}
}

// accepts reports whether a child called name may be appended.
func (r *Rules) accepts(name string) bool {
	if name == "" {
		r.fail(internalError(r.CanonicalName(), i18n.EmptyName))
		return false
	}
	if r.kind == KindField {
		r.fail(internalError(r.keyPath(name), i18n.ExpectedHash))
		return false
	}
	if r.claimed(name) {
		r.fail(internalError(r.keyPath(name), i18n.DuplicateParam))
		return false
	}
	return true
}

// claimed reports whether a child is named name or renames onto it.
func (r *Rules) claimed(name string) bool {
	for _, c := range r.children {
		if c.name == name || c.options.To == name {
			return true
		}
	}
	return false
}

// Namespace declares a nested mapping called name and immediately runs
// declare against it.
func (r *Rules) Namespace(name string, declare func(*Rules)) *Rules {
	if !r.accepts(name) {
		return r
	}
	if declare == nil {
		r.fail(internalError(r.keyPath(name), i18n.MissingBlock))
		return r
	}
	ns := &Rules{name: name, kind: KindNamespace, parent: r, settings: r.settings}
	r.children = append(r.children, ns)
	declare(ns)
	return r
}

// Field declares a scalar parameter of type t.
func (r *Rules) Field(t Type, name string, opts ...FieldOption) *Rules {
	if !t.valid() {
		r.fail(internalError(r.keyPath(name), i18n.UnknownType, "type", t.String()))
		return r
	}
	if !r.accepts(name) {
		return r
	}
	f := &Rules{name: name, kind: KindField, typ: t, parent: r, settings: r.settings}
	for _, opt := range opts {
		if opt != nil {
			opt(&f.options)
		}
	}
	if to := f.options.To; to != "" && to != name && r.claimed(to) {
		r.fail(internalError(f.CanonicalName(), i18n.RenameClash, "to", r.keyPath(to)))
		return r
	}
	if err := f.options.compile(); err != nil {
		e := internalError(f.CanonicalName(), i18n.BadCheck, "cause", err.Error())
		e.Cause = err
		r.fail(e)
		return r
	}
	r.children = append(r.children, f)
	return r
}

// Param declares a scalar parameter by its textual type tag. An unknown tag
// is recorded as an internal declaration error.
func (r *Rules) Param(tag, name string, opts ...FieldOption) *Rules {
	t, ok := ParseType(tag)
	if !ok {
		r.fail(internalError(r.keyPath(name), i18n.UnknownType, "type", tag))
		return r
	}
	return r.Field(t, name, opts...)
}

func (r *Rules) String(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeString, name, opts...)
}

func (r *Rules) Text(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeText, name, opts...)
}

func (r *Rules) Binary(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeBinary, name, opts...)
}

func (r *Rules) Integer(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeInteger, name, opts...)
}

func (r *Rules) Float(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeFloat, name, opts...)
}

func (r *Rules) Decimal(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeDecimal, name, opts...)
}

func (r *Rules) Boolean(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeBoolean, name, opts...)
}

func (r *Rules) Datetime(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeDatetime, name, opts...)
}

// Array declares a sequence parameter. A comma-delimited string is accepted
// and split.
func (r *Rules) Array(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeArray, name, opts...)
}

func (r *Rules) UUID(name string, opts ...FieldOption) *Rules {
	return r.Field(TypeUUID, name, opts...)
}
