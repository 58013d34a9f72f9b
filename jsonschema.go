package acceptparams

import (
	js "github.com/nateware/accept-params/jsonschema"
)

// JSONSchema projects the declared tree into a JSON Schema document.
// Process transforms and Check expressions have no JSON Schema form and
// are omitted.
func (r *Rules) JSONSchema() (*js.Schema, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	s := r.jsonSchema()
	if r.parent == nil {
		s.SchemaURI = js.Draft
	}
	return s, nil
}

func (r *Rules) jsonSchema() *js.Schema {
	if r.kind == KindField {
		return r.fieldSchema()
	}
	props := make(map[string]*js.Schema, len(r.children))
	var req []string
	for _, c := range r.children {
		name := c.name
		if c.options.To != "" {
			name = c.options.To
		}
		props[name] = c.jsonSchema()
		if c.kind == KindField && c.options.Required && !c.options.hasDefault() {
			req = append(req, name)
		}
	}
	// unknown keys: rejected, or accepted (stripped or kept)
	var additional any = r.settings.IgnoreUnexpected
	return &js.Schema{Type: "object", Properties: props, Required: req, AdditionalProperties: additional}
}

func (r *Rules) fieldSchema() *js.Schema {
	o := &r.options
	s := &js.Schema{}
	switch r.typ {
	case TypeInteger:
		s.Type = "integer"
	case TypeFloat, TypeDecimal:
		s.Type = "number"
	case TypeBoolean:
		s.Type = "boolean"
	case TypeDatetime:
		s.Type, s.Format = "string", "date-time"
	case TypeUUID:
		s.Type, s.Format = "string", "uuid"
	case TypeArray:
		s.Type = "array"
		s.Items = &js.Schema{}
		if o.MaxLength > 0 {
			n := o.MaxLength
			s.MaxItems = &n
		}
	default:
		s.Type = "string"
	}
	if o.HasDefault {
		s.Default = o.Default
	}
	if o.Process != nil {
		// the transform decides the output type
		s.Type = ""
	}
	s.Minimum, s.Maximum = o.MinValue, o.MaxValue
	if len(o.In) > 0 {
		s.Enum = append([]any(nil), o.In...)
	}
	if o.MaxLength > 0 && r.typ != TypeArray {
		n := o.MaxLength
		s.MaxLength = &n
	}
	if o.NotEmpty && s.Type == "string" {
		one := 1
		s.MinLength = &one
	}
	if o.Pattern != nil {
		s.Pattern = o.Pattern.String()
		s.Description = o.Format
	}
	return s
}
