package acceptparams

import (
	"slices"
	"sync/atomic"
)

// Settings controls how a declared tree treats input it does not recognize.
type Settings struct {
	// IgnoreUnexpected accepts undeclared keys instead of failing.
	IgnoreUnexpected bool `yaml:"ignore_unexpected" json:"ignore_unexpected"`
	// RemoveUnexpected deletes undeclared keys from the input. It only
	// applies when IgnoreUnexpected is set.
	RemoveUnexpected bool `yaml:"remove_unexpected" json:"remove_unexpected"`
	// IgnoreParams are top-level keys that are never reported as unexpected.
	IgnoreParams []string `yaml:"ignore_params" json:"ignore_params"`
	// IgnoreColumns are model columns skipped by Rules.Model.
	IgnoreColumns []string `yaml:"ignore_columns" json:"ignore_columns"`
	// CacheRules is reserved; declared trees are always rebuilt per call.
	CacheRules bool `yaml:"cache_rules" json:"cache_rules"`
}

// BuiltinSettings returns the settings used when nothing was configured.
func BuiltinSettings() Settings {
	return Settings{
		IgnoreParams:  []string{"action", "controller", "commit", "format", "_method"},
		IgnoreColumns: []string{"id", "created_at", "updated_at", "created_on", "updated_on", "lock_version"},
	}
}

func (s Settings) clone() Settings {
	s.IgnoreParams = slices.Clone(s.IgnoreParams)
	s.IgnoreColumns = slices.Clone(s.IgnoreColumns)
	return s
}

func (s *Settings) ignoresParam(name string) bool { return slices.Contains(s.IgnoreParams, name) }

func (s *Settings) ignoresColumn(name string) bool { return slices.Contains(s.IgnoreColumns, name) }

var defaults atomic.Pointer[Settings]

func init() { ResetDefaults() }

// Defaults returns a copy of the process-wide default settings.
func Defaults() Settings { return defaults.Load().clone() }

// SetDefaults replaces the process-wide default settings. Validations that
// already built their root keep the settings they resolved.
func SetDefaults(s Settings) {
	c := s.clone()
	defaults.Store(&c)
}

// ResetDefaults restores BuiltinSettings as the process-wide defaults.
func ResetDefaults() { SetDefaults(BuiltinSettings()) }

// Option overrides the process-wide defaults for a single root.
type Option func(*Settings)

// WithIgnoreUnexpected overrides Settings.IgnoreUnexpected.
func WithIgnoreUnexpected(b bool) Option { return func(s *Settings) { s.IgnoreUnexpected = b } }

// WithRemoveUnexpected overrides Settings.RemoveUnexpected.
func WithRemoveUnexpected(b bool) Option { return func(s *Settings) { s.RemoveUnexpected = b } }

// WithIgnoreParams replaces Settings.IgnoreParams.
func WithIgnoreParams(names ...string) Option {
	return func(s *Settings) { s.IgnoreParams = slices.Clone(names) }
}

// WithIgnoreColumns replaces Settings.IgnoreColumns.
func WithIgnoreColumns(names ...string) Option {
	return func(s *Settings) { s.IgnoreColumns = slices.Clone(names) }
}

// WithSettings replaces every setting at once.
func WithSettings(all Settings) Option {
	return func(s *Settings) { *s = all.clone() }
}

// resolveSettings merges opts onto the current defaults.
func resolveSettings(opts []Option) *Settings {
	s := Defaults()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return &s
}
