package acceptparams

import "github.com/nateware/accept-params/i18n"

// Column describes one column of a stored record type.
type Column struct {
	Name string
	// Type is a type tag understood by ParseType.
	Type       string
	Nullable   bool
	HasDefault bool
	// Length is the declared maximum length, 0 when unbounded.
	Length int
}

// ColumnSource exposes the columns of a record type, for example a database
// table.
type ColumnSource interface {
	Columns() ([]Column, error)
}

// Model declares one field per column of src, skipping the columns listed
// in Settings.IgnoreColumns. A column is required when it is neither
// nullable nor defaulted by the store.
func (r *Rules) Model(src ColumnSource) *Rules {
	cols, err := src.Columns()
	if err != nil {
		e := internalError(r.CanonicalName(), i18n.ModelColumns, "cause", err.Error())
		e.Cause = err
		r.fail(e)
		return r
	}
	for _, c := range cols {
		if r.settings.ignoresColumn(c.Name) {
			continue
		}
		r.Param(c.Type, c.Name, RequiredIf(!c.Nullable && !c.HasDefault), MaxLength(c.Length))
	}
	return r
}
