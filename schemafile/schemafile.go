// Package schemafile declares parameter schemas from YAML or JSON documents.
//
// A document mirrors the builder grammar:
//
//	settings:
//	  ignore_unexpected: false
//	params:
//	  - name: id
//	    type: integer
//	    required: true
//	  - name: user
//	    fields:
//	      - name: login
//	        type: string
//	        maxlength: 32
package schemafile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	acceptparams "github.com/nateware/accept-params"
)

// Format selects the document decoder.
type Format int

const (
	YAML Format = iota
	JSON
)

// TypeNamespace marks a nested group. A param with fields and no type is a
// namespace as well.
const TypeNamespace = "namespace"

// Document is a parsed schema file.
type Document struct {
	Settings *Settings `yaml:"settings" json:"settings"`
	Params   []Param   `yaml:"params" json:"params"`
}

// Settings overrides the process-wide defaults for trees declared from the
// document. Nil fields keep the defaults.
type Settings struct {
	IgnoreUnexpected *bool    `yaml:"ignore_unexpected" json:"ignore_unexpected"`
	RemoveUnexpected *bool    `yaml:"remove_unexpected" json:"remove_unexpected"`
	IgnoreParams     []string `yaml:"ignore_params" json:"ignore_params"`
}

// Param declares one field or namespace.
type Param struct {
	Name      string   `yaml:"name" json:"name"`
	Type      string   `yaml:"type" json:"type"`
	Fields    []Param  `yaml:"fields" json:"fields"`
	Required  bool     `yaml:"required" json:"required"`
	Default   any      `yaml:"default" json:"default"`
	To        string   `yaml:"to" json:"to"`
	MinValue  *float64 `yaml:"minvalue" json:"minvalue"`
	MaxValue  *float64 `yaml:"maxvalue" json:"maxvalue"`
	In        []any    `yaml:"in" json:"in"`
	MaxLength int      `yaml:"maxlength" json:"maxlength"`
	Pattern   string   `yaml:"pattern" json:"pattern"`
	Format    string   `yaml:"format" json:"format"`
	NotEmpty  bool     `yaml:"not_empty" json:"not_empty"`
	Check     string   `yaml:"check" json:"check"`

	re *regexp.Regexp
}

// IsNamespace reports whether p declares a nested group.
func (p *Param) IsNamespace() bool {
	return p.Type == TypeNamespace || (p.Type == "" && p.Fields != nil)
}

// Load reads a schema file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	format := YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = JSON
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Parse decodes and checks a schema document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}
		normalizeNumbers(doc.Params)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}
	}
	if len(doc.Params) == 0 {
		return nil, fmt.Errorf("parse schema: no params declared")
	}
	if err := compile(doc.Params, ""); err != nil {
		return nil, err
	}
	return &doc, nil
}

// compile checks names and compiles patterns. Type tags, duplicates and
// check expressions are reported by the declared tree itself.
func compile(params []Param, parent string) error {
	for i := range params {
		p := &params[i]
		path := p.Name
		if parent != "" {
			path = parent + "[" + p.Name + "]"
		}
		if p.Name == "" {
			return fmt.Errorf("schema: unnamed param under %q", parent)
		}
		if p.IsNamespace() {
			if err := compile(p.Fields, path); err != nil {
				return err
			}
			continue
		}
		if p.Type == "" {
			return fmt.Errorf("schema: param %q has no type", path)
		}
		if p.Pattern != "" {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return fmt.Errorf("schema: param %q: pattern: %w", path, err)
			}
			p.re = re
		}
	}
	return nil
}

// Options returns the per-call options carried by the document.
func (d *Document) Options() []acceptparams.Option {
	s := d.Settings
	if s == nil {
		return nil
	}
	var opts []acceptparams.Option
	if s.IgnoreUnexpected != nil {
		opts = append(opts, acceptparams.WithIgnoreUnexpected(*s.IgnoreUnexpected))
	}
	if s.RemoveUnexpected != nil {
		opts = append(opts, acceptparams.WithRemoveUnexpected(*s.RemoveUnexpected))
	}
	if s.IgnoreParams != nil {
		opts = append(opts, acceptparams.WithIgnoreParams(s.IgnoreParams...))
	}
	return opts
}

// Declare is a declaration block adding the document's params to r.
func (d *Document) Declare(r *acceptparams.Rules) {
	declare(r, d.Params)
}

// Rules builds a standalone tree from the document.
func (d *Document) Rules() *acceptparams.Rules {
	r := acceptparams.NewRules(d.Options()...)
	d.Declare(r)
	return r
}

// Accept validates params in place against the document using a.
func (d *Document) Accept(ctx context.Context, a *acceptparams.Acceptor, params map[string]any) error {
	return a.Accept(ctx, params, d.Declare, d.Options()...)
}

func declare(r *acceptparams.Rules, params []Param) {
	for i := range params {
		p := &params[i]
		if p.IsNamespace() {
			fields := p.Fields
			r.Namespace(p.Name, func(n *acceptparams.Rules) { declare(n, fields) })
			continue
		}
		r.Param(p.Type, p.Name, p.fieldOptions()...)
	}
}

func (p *Param) fieldOptions() []acceptparams.FieldOption {
	var opts []acceptparams.FieldOption
	if p.Required {
		opts = append(opts, acceptparams.Required())
	}
	if p.Default != nil {
		opts = append(opts, acceptparams.Default(p.Default))
	}
	if p.To != "" {
		opts = append(opts, acceptparams.To(p.To))
	}
	if p.MinValue != nil {
		opts = append(opts, acceptparams.MinValue(*p.MinValue))
	}
	if p.MaxValue != nil {
		opts = append(opts, acceptparams.MaxValue(*p.MaxValue))
	}
	if p.In != nil {
		opts = append(opts, acceptparams.In(p.In...))
	}
	if p.MaxLength > 0 {
		opts = append(opts, acceptparams.MaxLength(p.MaxLength))
	}
	if p.re != nil {
		opts = append(opts, acceptparams.Pattern(p.re))
	}
	if p.Format != "" {
		opts = append(opts, acceptparams.Format(p.Format))
	}
	if p.NotEmpty {
		opts = append(opts, acceptparams.NotEmpty())
	}
	if p.Check != "" {
		opts = append(opts, acceptparams.Check(p.Check))
	}
	return opts
}

// normalizeNumbers turns json.Number defaults and set members into int64
// or float64, matching what the YAML decoder produces.
func normalizeNumbers(params []Param) {
	for i := range params {
		p := &params[i]
		p.Default = Normalize(p.Default)
		for j, v := range p.In {
			p.In[j] = Normalize(v)
		}
		normalizeNumbers(p.Fields)
	}
}

// Normalize converts json.Number values, including those nested in slices
// and maps, to int64 when integral and float64 otherwise.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = Normalize(t[i])
		}
	case map[string]any:
		for k := range t {
			t[k] = Normalize(t[k])
		}
	}
	return v
}
